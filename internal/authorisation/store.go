package authorisation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	dbmodel "github.com/wso2/psd2-consent-mgt/internal/system/database/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/database/provider"
	dbutils "github.com/wso2/psd2-consent-mgt/internal/system/database/utils"
)

const authorisationColumns = "AUTHORISATION_ID, ORG_ID, PARENT_ID, AUTHORISATION_TYPE, SCA_STATUS, SCA_APPROACH, " +
	"PSU_DATA, AUTHENTICATION_METHOD_ID, SCA_AUTHENTICATION_DATA, REDIRECT_URI, NOK_REDIRECT_URI, " +
	"REDIRECT_URL_EXPIRATION_TIMESTAMP, AUTHORISATION_EXPIRATION_TIMESTAMP, CREATION_TIMESTAMP, STATUS_CHANGE_TIMESTAMP"

// DBQuery objects for authorisation operations
var (
	QueryCreateAuthorisation = dbmodel.DBQuery{
		ID:    "CREATE_AUTHORISATION",
		Query: "INSERT INTO AUTHORISATION (" + authorisationColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetAuthorisationByID = dbmodel.DBQuery{
		ID:    "GET_AUTHORISATION_BY_ID",
		Query: "SELECT " + authorisationColumns + " FROM AUTHORISATION WHERE AUTHORISATION_ID = ? AND ORG_ID = ?",
	}

	QueryGetAuthorisationsByParent = dbmodel.DBQuery{
		ID: "GET_AUTHORISATIONS_BY_PARENT",
		Query: "SELECT " + authorisationColumns + " FROM AUTHORISATION WHERE PARENT_ID = ? AND AUTHORISATION_TYPE = ? " +
			"AND ORG_ID = ? ORDER BY CREATION_TIMESTAMP",
	}

	QueryUpdateAuthorisation = dbmodel.DBQuery{
		ID: "UPDATE_AUTHORISATION",
		Query: "UPDATE AUTHORISATION SET SCA_STATUS = ?, PSU_DATA = ?, AUTHENTICATION_METHOD_ID = ?, " +
			"SCA_AUTHENTICATION_DATA = ?, STATUS_CHANGE_TIMESTAMP = ? WHERE AUTHORISATION_ID = ? AND ORG_ID = ?",
	}
)

// AuthorisationStore defines the persistence operations of SCA authorisations.
type AuthorisationStore interface {
	Create(tx dbmodel.TxInterface, authorisation *model.Authorisation) error
	GetByID(ctx context.Context, authorisationID, orgID string) (*model.Authorisation, error)
	GetByParent(ctx context.Context, parentID string, authType model.AuthorisationType, orgID string) ([]*model.Authorisation, error)
	Update(tx dbmodel.TxInterface, authorisation *model.Authorisation) error
}

type store struct {
	dbClient provider.DBClientInterface
}

func newAuthorisationStore(dbClient provider.DBClientInterface) AuthorisationStore {
	return &store{
		dbClient: dbClient,
	}
}

func (s *store) Create(tx dbmodel.TxInterface, authorisation *model.Authorisation) error {
	psuData, err := marshalPsuData(authorisation)
	if err != nil {
		return err
	}
	affected, err := s.dbClient.ExecuteTx(tx, QueryCreateAuthorisation,
		authorisation.AuthorisationID, authorisation.OrgID, authorisation.ParentID, string(authorisation.Type),
		string(authorisation.ScaStatus), string(authorisation.ScaApproach), psuData,
		authorisation.AuthenticationMethodID, authorisation.ScaAuthenticationData,
		authorisation.RedirectURI, authorisation.NokRedirectURI,
		authorisation.RedirectURLExpirationTimestamp, authorisation.AuthorisationExpirationTimestamp,
		authorisation.CreationTimestamp, authorisation.StatusChangeTimestamp)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("authorisation %s was not inserted", authorisation.AuthorisationID)
	}
	return nil
}

// GetByID retrieves an authorisation by ID, returning nil when it does not exist.
func (s *store) GetByID(ctx context.Context, authorisationID, orgID string) (*model.Authorisation, error) {
	rows, err := s.dbClient.Query(QueryGetAuthorisationByID, authorisationID, orgID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToAuthorisation(rows[0])
}

// GetByParent lists the authorisations of one type started for a consent or payment.
func (s *store) GetByParent(ctx context.Context, parentID string, authType model.AuthorisationType,
	orgID string) ([]*model.Authorisation, error) {
	rows, err := s.dbClient.Query(QueryGetAuthorisationsByParent, parentID, string(authType), orgID)
	if err != nil {
		return nil, err
	}
	authorisations := make([]*model.Authorisation, 0, len(rows))
	for _, row := range rows {
		authorisation, err := mapToAuthorisation(row)
		if err != nil {
			return nil, err
		}
		authorisations = append(authorisations, authorisation)
	}
	return authorisations, nil
}

func (s *store) Update(tx dbmodel.TxInterface, authorisation *model.Authorisation) error {
	psuData, err := marshalPsuData(authorisation)
	if err != nil {
		return err
	}
	_, err = s.dbClient.ExecuteTx(tx, QueryUpdateAuthorisation,
		string(authorisation.ScaStatus), psuData, authorisation.AuthenticationMethodID,
		authorisation.ScaAuthenticationData, authorisation.StatusChangeTimestamp,
		authorisation.AuthorisationID, authorisation.OrgID)
	return err
}

func mapToAuthorisation(row map[string]interface{}) (*model.Authorisation, error) {
	authorisation := &model.Authorisation{
		AuthorisationID:                  dbutils.RowString(row, "AUTHORISATION_ID"),
		OrgID:                            dbutils.RowString(row, "ORG_ID"),
		ParentID:                         dbutils.RowString(row, "PARENT_ID"),
		Type:                             model.AuthorisationType(dbutils.RowString(row, "AUTHORISATION_TYPE")),
		ScaStatus:                        model.ScaStatus(dbutils.RowString(row, "SCA_STATUS")),
		ScaApproach:                      model.ScaApproach(dbutils.RowString(row, "SCA_APPROACH")),
		AuthenticationMethodID:           dbutils.RowString(row, "AUTHENTICATION_METHOD_ID"),
		ScaAuthenticationData:            dbutils.RowString(row, "SCA_AUTHENTICATION_DATA"),
		RedirectURI:                      dbutils.RowString(row, "REDIRECT_URI"),
		NokRedirectURI:                   dbutils.RowString(row, "NOK_REDIRECT_URI"),
		RedirectURLExpirationTimestamp:   dbutils.RowInt64(row, "REDIRECT_URL_EXPIRATION_TIMESTAMP"),
		AuthorisationExpirationTimestamp: dbutils.RowInt64(row, "AUTHORISATION_EXPIRATION_TIMESTAMP"),
		CreationTimestamp:                dbutils.RowInt64(row, "CREATION_TIMESTAMP"),
		StatusChangeTimestamp:            dbutils.RowInt64(row, "STATUS_CHANGE_TIMESTAMP"),
	}
	if raw := dbutils.RowString(row, "PSU_DATA"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &authorisation.PsuData); err != nil {
			return nil, fmt.Errorf("invalid PSU_DATA column: %w", err)
		}
	}
	return authorisation, nil
}

// marshalPsuData stores an anonymous authorisation as SQL NULL.
func marshalPsuData(authorisation *model.Authorisation) (interface{}, error) {
	if authorisation.PsuData.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(authorisation.PsuData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal psu data: %w", err)
	}
	return string(b), nil
}

// storeWriter lets the SCA chain persist authorisations in their own transaction.
type storeWriter struct {
	execute func(queries []func(tx dbmodel.TxInterface) error) error
	store   AuthorisationStore
}

func (w *storeWriter) SaveAuthorisation(_ context.Context, authorisation *model.Authorisation) error {
	return w.execute([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return w.store.Update(tx, authorisation)
		},
	})
}
