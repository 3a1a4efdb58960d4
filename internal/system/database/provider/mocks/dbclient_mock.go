package mocks

import (
	"database/sql"

	"github.com/stretchr/testify/mock"

	dbmodel "github.com/wso2/psd2-consent-mgt/internal/system/database/model"
)

// MockDBClient is a mock implementation of provider.DBClientInterface
type MockDBClient struct {
	mock.Mock
}

func (m *MockDBClient) Query(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	callArgs := m.Called(query, args)
	if callArgs.Get(0) == nil {
		return nil, callArgs.Error(1)
	}
	return callArgs.Get(0).([]map[string]interface{}), callArgs.Error(1)
}

func (m *MockDBClient) Execute(query dbmodel.DBQuery, args ...interface{}) (int64, error) {
	callArgs := m.Called(query, args)
	return callArgs.Get(0).(int64), callArgs.Error(1)
}

func (m *MockDBClient) QueryTx(tx dbmodel.TxInterface, query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	callArgs := m.Called(tx, query, args)
	if callArgs.Get(0) == nil {
		return nil, callArgs.Error(1)
	}
	return callArgs.Get(0).([]map[string]interface{}), callArgs.Error(1)
}

func (m *MockDBClient) ExecuteTx(tx dbmodel.TxInterface, query dbmodel.DBQuery, args ...interface{}) (int64, error) {
	callArgs := m.Called(tx, query, args)
	return callArgs.Get(0).(int64), callArgs.Error(1)
}

func (m *MockDBClient) BeginTx() (dbmodel.TxInterface, error) {
	callArgs := m.Called()
	if callArgs.Get(0) == nil {
		return nil, callArgs.Error(1)
	}
	return callArgs.Get(0).(dbmodel.TxInterface), callArgs.Error(1)
}

// MockTx is a mock implementation of dbmodel.TxInterface
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Exec(query string, args ...interface{}) (sql.Result, error) {
	callArgs := m.Called(query, args)
	if callArgs.Get(0) == nil {
		return nil, callArgs.Error(1)
	}
	return callArgs.Get(0).(sql.Result), callArgs.Error(1)
}

func (m *MockTx) Query(query string, args ...interface{}) (*sql.Rows, error) {
	callArgs := m.Called(query, args)
	if callArgs.Get(0) == nil {
		return nil, callArgs.Error(1)
	}
	return callArgs.Get(0).(*sql.Rows), callArgs.Error(1)
}

func (m *MockTx) Commit() error {
	return m.Called().Error(0)
}

func (m *MockTx) Rollback() error {
	return m.Called().Error(0)
}

// NewTransactionalClient returns a client whose transactions always begin, commit and
// roll back successfully. Stores used with it are expected to be mocks themselves.
func NewTransactionalClient() (*MockDBClient, *MockTx) {
	tx := &MockTx{}
	tx.On("Commit").Return(nil).Maybe()
	tx.On("Rollback").Return(nil).Maybe()

	client := &MockDBClient{}
	client.On("BeginTx").Return(tx, nil).Maybe()
	return client, tx
}
