package authorisation

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/database/provider"
	"github.com/wso2/psd2-consent-mgt/internal/system/stores"
)

var authorisationRowColumns = []string{
	"AUTHORISATION_ID", "ORG_ID", "PARENT_ID", "AUTHORISATION_TYPE", "SCA_STATUS", "SCA_APPROACH",
	"PSU_DATA", "AUTHENTICATION_METHOD_ID", "SCA_AUTHENTICATION_DATA", "REDIRECT_URI", "NOK_REDIRECT_URI",
	"REDIRECT_URL_EXPIRATION_TIMESTAMP", "AUTHORISATION_EXPIRATION_TIMESTAMP", "CREATION_TIMESTAMP",
	"STATUS_CHANGE_TIMESTAMP",
}

func newStoreWithMock(t *testing.T) (AuthorisationStore, provider.DBClientInterface, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client := provider.NewDBClient(sqlx.NewDb(db, "sqlmock"), "mysql")
	return newAuthorisationStore(client), client, mock
}

func authorisationRow(id, status string, psuJSON driver.Value) []driver.Value {
	return []driver.Value{
		id, testOrgID, "consent-1", "AIS", status, "EMBEDDED",
		psuJSON, "SMS_OTP", "Enter the TAN sent to you", okRedirect, nokRedirect,
		int64(1792059000000), int64(1792062000000), int64(1792058400000),
		int64(1792058400000),
	}
}

func TestStore_GetByIDMapsRow(t *testing.T) {
	s, _, mock := newStoreWithMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(QueryGetAuthorisationByID.Query)).
		WithArgs("auth-1", testOrgID).
		WillReturnRows(sqlmock.NewRows(authorisationRowColumns).
			AddRow(authorisationRow("auth-1", "SCAMETHODSELECTED", `{"psuId":"PSU-A"}`)...))

	authorisation, err := s.GetByID(context.Background(), "auth-1", testOrgID)
	require.NoError(t, err)
	require.NotNil(t, authorisation)

	assert.Equal(t, model.AuthorisationTypeAis, authorisation.Type)
	assert.Equal(t, model.ScaStatusScaMethodSelected, authorisation.ScaStatus)
	assert.Equal(t, model.ScaApproachEmbedded, authorisation.ScaApproach)
	assert.Equal(t, consentmodel.PsuIdData{PsuID: "PSU-A"}, authorisation.PsuData)
	assert.Equal(t, "SMS_OTP", authorisation.AuthenticationMethodID)
	assert.Equal(t, int64(1792062000000), authorisation.AuthorisationExpirationTimestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetByIDNotFound(t *testing.T) {
	s, _, mock := newStoreWithMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(QueryGetAuthorisationByID.Query)).
		WithArgs("missing", testOrgID).
		WillReturnRows(sqlmock.NewRows(authorisationRowColumns))

	authorisation, err := s.GetByID(context.Background(), "missing", testOrgID)
	assert.NoError(t, err)
	assert.Nil(t, authorisation)
}

func TestStore_GetByParent(t *testing.T) {
	s, _, mock := newStoreWithMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(QueryGetAuthorisationsByParent.Query)).
		WithArgs("consent-1", "AIS", testOrgID).
		WillReturnRows(sqlmock.NewRows(authorisationRowColumns).
			AddRow(authorisationRow("auth-1", "FAILED", `{"psuId":"PSU-A"}`)...).
			AddRow(authorisationRow("auth-2", "RECEIVED", nil)...))

	authorisations, err := s.GetByParent(context.Background(), "consent-1", model.AuthorisationTypeAis, testOrgID)
	require.NoError(t, err)
	require.Len(t, authorisations, 2)
	assert.Equal(t, "PSU-A", authorisations[0].PsuData.PsuID)
	assert.True(t, authorisations[1].PsuData.IsEmpty())
}

func TestStore_GetByParentRejectsCorruptPsuData(t *testing.T) {
	s, _, mock := newStoreWithMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(QueryGetAuthorisationsByParent.Query)).
		WillReturnRows(sqlmock.NewRows(authorisationRowColumns).
			AddRow(authorisationRow("auth-1", "FAILED", `{psu`)...))

	_, err := s.GetByParent(context.Background(), "consent-1", model.AuthorisationTypeAis, testOrgID)
	assert.ErrorContains(t, err, "PSU_DATA")
}

func TestStore_CreateAndUpdateInsideTransaction(t *testing.T) {
	s, client, mock := newStoreWithMock(t)
	authorisation := &model.Authorisation{
		AuthorisationID:                  "auth-1",
		OrgID:                            testOrgID,
		ParentID:                         "payment-1",
		Type:                             model.AuthorisationTypePisCreation,
		ScaStatus:                        model.ScaStatusReceived,
		ScaApproach:                      model.ScaApproachRedirect,
		RedirectURI:                      okRedirect,
		NokRedirectURI:                   nokRedirect,
		RedirectURLExpirationTimestamp:   600000,
		AuthorisationExpirationTimestamp: 3600000,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(QueryCreateAuthorisation.Query)).
		WithArgs("auth-1", testOrgID, "payment-1", "PIS_CREATION", "RECEIVED", "REDIRECT", nil, "", "",
			okRedirect, nokRedirect, int64(600000), int64(3600000), int64(0), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(QueryUpdateAuthorisation.Query)).
		WithArgs("PSUIDENTIFIED", `{"psuId":"PSU-A"}`, "", "", int64(42), "auth-1", testOrgID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := client.BeginTx()
	require.NoError(t, err)
	require.NoError(t, s.Create(tx, authorisation))
	authorisation.PsuData = consentmodel.PsuIdData{PsuID: "PSU-A"}
	authorisation.SetStatus(model.ScaStatusPsuIdentified, 42)
	require.NoError(t, s.Update(tx, authorisation))
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateNoRowsAffected(t *testing.T) {
	s, client, mock := newStoreWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(QueryCreateAuthorisation.Query)).WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := client.BeginTx()
	require.NoError(t, err)
	assert.Error(t, s.Create(tx, &model.Authorisation{AuthorisationID: "auth-1"}))
}

func TestStoreWriter_SavesInOwnTransaction(t *testing.T) {
	s, client, mock := newStoreWithMock(t)
	registry := stores.NewStoreRegistry(client)
	writer := &storeWriter{execute: registry.ExecuteTransaction, store: s}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(QueryUpdateAuthorisation.Query)).
		WithArgs("FINALISED", nil, "SMS_OTP", "", int64(7), "auth-1", testOrgID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := writer.SaveAuthorisation(context.Background(), &model.Authorisation{
		AuthorisationID:        "auth-1",
		OrgID:                  testOrgID,
		ScaStatus:              model.ScaStatusFinalised,
		AuthenticationMethodID: "SMS_OTP",
		StatusChangeTimestamp:  7,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
