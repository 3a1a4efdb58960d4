package consent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
	dbmodel "github.com/wso2/psd2-consent-mgt/internal/system/database/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/database/provider"
	dbutils "github.com/wso2/psd2-consent-mgt/internal/system/database/utils"
	"github.com/wso2/psd2-consent-mgt/internal/system/utils"
)

const consentColumns = "CONSENT_ID, ORG_ID, TPP_ID, CONSENT_STATUS, RECURRING_INDICATOR, COMBINED_SERVICE_INDICATOR, " +
	"MULTILEVEL_SCA_REQUIRED, VALID_UNTIL, EXPIRE_DATE, LAST_ACTION_DATE, FREQUENCY_PER_DAY, TPP_FREQUENCY_PER_DAY, " +
	"TPP_ACCESS, ASPSP_ACCESS, PSU_DATA, CREATION_TIMESTAMP, STATUS_CHANGE_TIMESTAMP, CHECKSUM"

// DBQuery objects for consent operations
var (
	QueryCreateConsent = dbmodel.DBQuery{
		ID:    "CREATE_CONSENT",
		Query: "INSERT INTO CONSENT (" + consentColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetConsentByID = dbmodel.DBQuery{
		ID:    "GET_CONSENT_BY_ID",
		Query: "SELECT " + consentColumns + " FROM CONSENT WHERE CONSENT_ID = ? AND ORG_ID = ?",
	}

	QueryGetChecksumForUpdate = dbmodel.DBQuery{
		ID:          "GET_CONSENT_CHECKSUM_FOR_UPDATE",
		Query:       "SELECT CHECKSUM FROM CONSENT WHERE CONSENT_ID = ? AND ORG_ID = ? FOR UPDATE",
		SQLiteQuery: "SELECT CHECKSUM FROM CONSENT WHERE CONSENT_ID = ? AND ORG_ID = ?",
	}

	QueryUpdateConsent = dbmodel.DBQuery{
		ID: "UPDATE_CONSENT",
		Query: "UPDATE CONSENT SET CONSENT_STATUS = ?, MULTILEVEL_SCA_REQUIRED = ?, VALID_UNTIL = ?, EXPIRE_DATE = ?, " +
			"LAST_ACTION_DATE = ?, FREQUENCY_PER_DAY = ?, ASPSP_ACCESS = ?, PSU_DATA = ?, STATUS_CHANGE_TIMESTAMP = ?, " +
			"CHECKSUM = ? WHERE CONSENT_ID = ? AND ORG_ID = ?",
	}

	// queryFindByTppAndStatusesBase is expanded with one placeholder per status.
	queryFindByTppAndStatusesBase = "SELECT " + consentColumns +
		" FROM CONSENT WHERE TPP_ID = ? AND ORG_ID = ? AND CONSENT_ID <> ? AND CONSENT_STATUS IN (%s)"

	QueryFindConsentsByPsuID = dbmodel.DBQuery{
		ID:    "FIND_CONSENTS_BY_PSU_ID",
		Query: "SELECT " + consentColumns + " FROM CONSENT WHERE ORG_ID = ? AND PSU_DATA LIKE ? ORDER BY CREATION_TIMESTAMP DESC",
	}
)

// ConsentStore defines the persistence operations of the consent lifecycle.
// Mutations run inside the caller's transaction.
type ConsentStore interface {
	Create(tx dbmodel.TxInterface, consent *model.Consent) (string, error)
	GetByID(ctx context.Context, consentID, orgID string) (*model.Consent, error)
	GetChecksumForUpdate(tx dbmodel.TxInterface, consentID, orgID string) ([]byte, error)
	Update(tx dbmodel.TxInterface, consent *model.Consent) error
	FindByTppAndStatuses(ctx context.Context, tppID, orgID, excludeConsentID string, statuses []model.ConsentStatus) ([]*model.Consent, error)
	FindByPsuID(ctx context.Context, psuID, orgID string) ([]*model.Consent, error)
}

// store implements the ConsentStore interface
type store struct {
	dbClient provider.DBClientInterface
}

// newConsentStore creates a new consent store
func newConsentStore(dbClient provider.DBClientInterface) ConsentStore {
	return &store{
		dbClient: dbClient,
	}
}

// Create inserts a consent and returns its id, or "" when no row was written.
func (s *store) Create(tx dbmodel.TxInterface, consent *model.Consent) (string, error) {
	tppAccess, aspspAccess, psuData, err := marshalConsentJSON(consent)
	if err != nil {
		return "", err
	}
	affected, err := s.dbClient.ExecuteTx(tx, QueryCreateConsent,
		consent.ConsentID, consent.OrgID, consent.TppID, string(consent.Status),
		consent.RecurringIndicator, consent.CombinedServiceIndicator, consent.MultilevelScaRequired,
		nullableDate(consent.ValidUntil), nullableDate(consent.ExpireDate), nullableDate(consent.LastActionDate),
		consent.FrequencyPerDay, consent.TppFrequencyPerDay,
		tppAccess, aspspAccess, psuData,
		consent.CreationTimestamp, consent.StatusChangeTimestamp, string(consent.Checksum))
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return "", nil
	}
	return consent.ConsentID, nil
}

// GetByID retrieves a consent by ID, returning nil when it does not exist.
func (s *store) GetByID(ctx context.Context, consentID, orgID string) (*model.Consent, error) {
	rows, err := s.dbClient.Query(QueryGetConsentByID, consentID, orgID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToConsent(rows[0])
}

// GetChecksumForUpdate locks the consent row and returns the checksum currently stored.
func (s *store) GetChecksumForUpdate(tx dbmodel.TxInterface, consentID, orgID string) ([]byte, error) {
	rows, err := s.dbClient.QueryTx(tx, QueryGetChecksumForUpdate, consentID, orgID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("consent %s not found", consentID)
	}
	checksum := dbutils.RowString(rows[0], "CHECKSUM")
	if checksum == "" {
		return nil, nil
	}
	return []byte(checksum), nil
}

// Update writes the mutable consent columns.
func (s *store) Update(tx dbmodel.TxInterface, consent *model.Consent) error {
	_, aspspAccess, psuData, err := marshalConsentJSON(consent)
	if err != nil {
		return err
	}
	_, err = s.dbClient.ExecuteTx(tx, QueryUpdateConsent,
		string(consent.Status), consent.MultilevelScaRequired,
		nullableDate(consent.ValidUntil), nullableDate(consent.ExpireDate), nullableDate(consent.LastActionDate),
		consent.FrequencyPerDay, aspspAccess, psuData, consent.StatusChangeTimestamp, string(consent.Checksum),
		consent.ConsentID, consent.OrgID)
	return err
}

// FindByTppAndStatuses lists the consents of a TPP in any of the given statuses,
// excluding excludeConsentID.
func (s *store) FindByTppAndStatuses(ctx context.Context, tppID, orgID, excludeConsentID string,
	statuses []model.ConsentStatus) ([]*model.Consent, error) {
	if len(statuses) == 0 {
		return []*model.Consent{}, nil
	}
	query := dbmodel.DBQuery{
		ID:    "FIND_CONSENTS_BY_TPP_AND_STATUSES",
		Query: dbutils.BuildInClause(queryFindByTppAndStatusesBase, len(statuses)),
	}
	args := make([]interface{}, 0, len(statuses)+3)
	args = append(args, tppID, orgID, excludeConsentID)
	for _, status := range statuses {
		args = append(args, string(status))
	}

	rows, err := s.dbClient.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return mapToConsents(rows)
}

// FindByPsuID lists consents whose PSU list mentions psuID. The LIKE match is a
// pre-filter; callers compare identities exactly.
func (s *store) FindByPsuID(ctx context.Context, psuID, orgID string) ([]*model.Consent, error) {
	fragment, err := json.Marshal(psuID)
	if err != nil {
		return nil, err
	}
	rows, err := s.dbClient.Query(QueryFindConsentsByPsuID, orgID, "%\"psuId\":"+string(fragment)+"%")
	if err != nil {
		return nil, err
	}
	return mapToConsents(rows)
}

func mapToConsents(rows []map[string]interface{}) ([]*model.Consent, error) {
	consents := make([]*model.Consent, 0, len(rows))
	for _, row := range rows {
		consent, err := mapToConsent(row)
		if err != nil {
			return nil, err
		}
		consents = append(consents, consent)
	}
	return consents, nil
}

// mapToConsent converts a database row to a Consent and marks it as loaded.
func mapToConsent(row map[string]interface{}) (*model.Consent, error) {
	consent := &model.Consent{
		ConsentID:                dbutils.RowString(row, "CONSENT_ID"),
		OrgID:                    dbutils.RowString(row, "ORG_ID"),
		TppID:                    dbutils.RowString(row, "TPP_ID"),
		Status:                   model.ConsentStatus(dbutils.RowString(row, "CONSENT_STATUS")),
		RecurringIndicator:       dbutils.RowBool(row, "RECURRING_INDICATOR"),
		CombinedServiceIndicator: dbutils.RowBool(row, "COMBINED_SERVICE_INDICATOR"),
		MultilevelScaRequired:    dbutils.RowBool(row, "MULTILEVEL_SCA_REQUIRED"),
		FrequencyPerDay:          int(dbutils.RowInt64(row, "FREQUENCY_PER_DAY")),
		TppFrequencyPerDay:       int(dbutils.RowInt64(row, "TPP_FREQUENCY_PER_DAY")),
		CreationTimestamp:        dbutils.RowInt64(row, "CREATION_TIMESTAMP"),
		StatusChangeTimestamp:    dbutils.RowInt64(row, "STATUS_CHANGE_TIMESTAMP"),
	}
	if checksum := dbutils.RowString(row, "CHECKSUM"); checksum != "" {
		consent.Checksum = []byte(checksum)
	}

	var err error
	if consent.ValidUntil, err = utils.ParseDate(dbutils.RowString(row, "VALID_UNTIL")); err != nil {
		return nil, fmt.Errorf("invalid VALID_UNTIL for consent %s: %w", consent.ConsentID, err)
	}
	if consent.ExpireDate, err = utils.ParseDate(dbutils.RowString(row, "EXPIRE_DATE")); err != nil {
		return nil, fmt.Errorf("invalid EXPIRE_DATE for consent %s: %w", consent.ConsentID, err)
	}
	if consent.LastActionDate, err = utils.ParseDate(dbutils.RowString(row, "LAST_ACTION_DATE")); err != nil {
		return nil, fmt.Errorf("invalid LAST_ACTION_DATE for consent %s: %w", consent.ConsentID, err)
	}

	if err := unmarshalColumn(row, "TPP_ACCESS", &consent.TppAccess); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(row, "ASPSP_ACCESS", &consent.AspspAccess); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(row, "PSU_DATA", &consent.PsuData); err != nil {
		return nil, err
	}

	consent.MarkLoaded()
	return consent, nil
}

func unmarshalColumn(row map[string]interface{}, column string, target interface{}) error {
	raw := dbutils.RowString(row, column)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("invalid %s column: %w", column, err)
	}
	return nil
}

func marshalConsentJSON(consent *model.Consent) (tppAccess, aspspAccess, psuData string, err error) {
	tpp, err := json.Marshal(consent.TppAccess)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal tpp access: %w", err)
	}
	aspsp, err := json.Marshal(consent.AspspAccess)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal aspsp access: %w", err)
	}
	psus := consent.PsuData
	if psus == nil {
		psus = []model.PsuIdData{}
	}
	psu, err := json.Marshal(psus)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal psu data: %w", err)
	}
	return string(tpp), string(aspsp), string(psu), nil
}

// nullableDate stores the zero date as NULL.
func nullableDate(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return utils.FormatDate(t)
}
