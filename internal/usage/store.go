package usage

import (
	"context"

	dbmodel "github.com/wso2/psd2-consent-mgt/internal/system/database/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/database/provider"
	dbutils "github.com/wso2/psd2-consent-mgt/internal/system/database/utils"
)

// DBQuery objects for usage counters
var (
	QueryEnsureUsageRow = dbmodel.DBQuery{
		ID:            "ENSURE_CONSENT_USAGE_ROW",
		Query:         "INSERT IGNORE INTO CONSENT_USAGE (CONSENT_ID, REQUEST_URI, USAGE_DATE, USAGE_COUNT, ORG_ID) VALUES (?, ?, ?, 0, ?)",
		PostgresQuery: "INSERT INTO CONSENT_USAGE (CONSENT_ID, REQUEST_URI, USAGE_DATE, USAGE_COUNT, ORG_ID) VALUES (?, ?, ?, 0, ?) ON CONFLICT DO NOTHING",
		SQLiteQuery:   "INSERT OR IGNORE INTO CONSENT_USAGE (CONSENT_ID, REQUEST_URI, USAGE_DATE, USAGE_COUNT, ORG_ID) VALUES (?, ?, ?, 0, ?)",
	}

	// The last two arguments are the daily limit; a non-positive limit is unbounded.
	QueryIncrementUsageWithinLimit = dbmodel.DBQuery{
		ID: "INCREMENT_CONSENT_USAGE_WITHIN_LIMIT",
		Query: "UPDATE CONSENT_USAGE SET USAGE_COUNT = USAGE_COUNT + 1 " +
			"WHERE CONSENT_ID = ? AND REQUEST_URI = ? AND USAGE_DATE = ? AND ORG_ID = ? AND (? <= 0 OR USAGE_COUNT < ?)",
	}

	QueryGetUsagesByConsent = dbmodel.DBQuery{
		ID:    "GET_CONSENT_USAGES",
		Query: "SELECT REQUEST_URI, USAGE_COUNT FROM CONSENT_USAGE WHERE CONSENT_ID = ? AND ORG_ID = ? AND USAGE_DATE = ?",
	}

	QueryDeleteUsagesByConsent = dbmodel.DBQuery{
		ID:    "DELETE_CONSENT_USAGES",
		Query: "DELETE FROM CONSENT_USAGE WHERE CONSENT_ID = ? AND ORG_ID = ?",
	}
)

// UsageStore persists per-consent, per-URI daily usage counts.
type UsageStore interface {
	Increment(tx dbmodel.TxInterface, consentID, orgID, requestURI, usageDate string, limit int) (bool, error)
	GetUsages(ctx context.Context, consentID, orgID, usageDate string) (map[string]int, error)
	Reset(tx dbmodel.TxInterface, consentID, orgID string) error
}

type store struct {
	dbClient provider.DBClientInterface
}

func newUsageStore(dbClient provider.DBClientInterface) UsageStore {
	return &store{dbClient: dbClient}
}

// Increment adds one usage unless the counter already reached limit. The guard and
// the increment are a single UPDATE so concurrent callers cannot both pass the check.
func (s *store) Increment(tx dbmodel.TxInterface, consentID, orgID, requestURI, usageDate string,
	limit int) (bool, error) {
	if _, err := s.dbClient.ExecuteTx(tx, QueryEnsureUsageRow, consentID, requestURI, usageDate, orgID); err != nil {
		return false, err
	}
	affected, err := s.dbClient.ExecuteTx(tx, QueryIncrementUsageWithinLimit,
		consentID, requestURI, usageDate, orgID, limit, limit)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *store) GetUsages(ctx context.Context, consentID, orgID, usageDate string) (map[string]int, error) {
	rows, err := s.dbClient.Query(QueryGetUsagesByConsent, consentID, orgID, usageDate)
	if err != nil {
		return nil, err
	}
	usages := make(map[string]int, len(rows))
	for _, row := range rows {
		usages[dbutils.RowString(row, "REQUEST_URI")] = int(dbutils.RowInt64(row, "USAGE_COUNT"))
	}
	return usages, nil
}

func (s *store) Reset(tx dbmodel.TxInterface, consentID, orgID string) error {
	_, err := s.dbClient.ExecuteTx(tx, QueryDeleteUsagesByConsent, consentID, orgID)
	return err
}
