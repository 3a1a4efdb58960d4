/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */
package provider

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	dbmodel "github.com/wso2/psd2-consent-mgt/internal/system/database/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/log"
)

// DBClientInterface runs named queries against the consent datasource. Rows are
// returned as column-name keyed maps with byte slices already converted to strings.
type DBClientInterface interface {
	Query(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error)
	Execute(query dbmodel.DBQuery, args ...interface{}) (int64, error)
	QueryTx(tx dbmodel.TxInterface, query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error)
	ExecuteTx(tx dbmodel.TxInterface, query dbmodel.DBQuery, args ...interface{}) (int64, error)
	BeginTx() (dbmodel.TxInterface, error)
}

// DBClient is the sqlx-backed implementation of DBClientInterface.
type DBClient struct {
	db     *sqlx.DB
	dbType string
}

// NewDBClient creates a client for the given connection and dialect.
func NewDBClient(db *sqlx.DB, dbType string) DBClientInterface {
	return &DBClient{db: db, dbType: dbType}
}

// Query executes a select statement and returns all rows.
func (c *DBClient) Query(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := c.db.Queryx(c.statement(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", query.ID, err)
	}
	defer rows.Close()

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("query %s scan failed: %w", query.ID, err)
		}
		results = append(results, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s iteration failed: %w", query.ID, err)
	}
	return results, nil
}

// Execute runs a data-modifying statement and returns the number of affected rows.
func (c *DBClient) Execute(query dbmodel.DBQuery, args ...interface{}) (int64, error) {
	result, err := c.db.Exec(c.statement(query), args...)
	if err != nil {
		return 0, fmt.Errorf("execute %s failed: %w", query.ID, err)
	}
	return result.RowsAffected()
}

// QueryTx executes a select statement inside the given transaction.
func (c *DBClient) QueryTx(tx dbmodel.TxInterface, query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := tx.Query(c.statement(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", query.ID, err)
	}
	defer rows.Close()

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		row := make(map[string]interface{})
		if err := sqlx.MapScan(rows, row); err != nil {
			return nil, fmt.Errorf("query %s scan failed: %w", query.ID, err)
		}
		results = append(results, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s iteration failed: %w", query.ID, err)
	}
	return results, nil
}

// ExecuteTx runs a data-modifying statement inside the given transaction.
func (c *DBClient) ExecuteTx(tx dbmodel.TxInterface, query dbmodel.DBQuery, args ...interface{}) (int64, error) {
	result, err := tx.Exec(c.statement(query), args...)
	if err != nil {
		return 0, fmt.Errorf("execute %s failed: %w", query.ID, err)
	}
	return result.RowsAffected()
}

// BeginTx starts a new transaction on the underlying connection.
func (c *DBClient) BeginTx() (dbmodel.TxInterface, error) {
	tx, err := c.db.Beginx()
	if err != nil {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBClient")).
			Error("Failed to begin transaction", log.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return dbmodel.NewTx(tx.Tx), nil
}

// statement resolves the dialect variant of query and rewrites its bind
// variables for the connected driver.
func (c *DBClient) statement(query dbmodel.DBQuery) string {
	return c.db.Rebind(query.GetQuery(c.dbType))
}

// normalizeRow converts driver byte slices into strings so mappers can type-assert uniformly.
func normalizeRow(row map[string]interface{}) map[string]interface{} {
	for key, value := range row {
		if b, ok := value.([]byte); ok {
			row[key] = string(b)
		}
	}
	return row
}
