package checksum

import (
	"bytes"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/log"
	"github.com/wso2/psd2-consent-mgt/internal/system/utils"
)

// VersionV3 is the version prefix written by V3.
const VersionV3 = "003"

// commonFields is the canonical form of the consent fields covered by the first digest.
// Field order here is the serialised order.
type commonFields struct {
	RecurringIndicator       bool                `json:"recurringIndicator"`
	CombinedServiceIndicator bool                `json:"combinedServiceIndicator"`
	ValidUntil               string              `json:"validUntil,omitempty"`
	TppFrequencyPerDay       int                 `json:"tppFrequencyPerDay"`
	Accesses                 model.AccountAccess `json:"accesses"`
}

// V3 digests the TPP-requested consent content and, separately per reference type,
// the bank-enriched ASPSP access.
type V3 struct {
	logger *log.Logger
}

// NewV3 returns the version 003 codec.
func NewV3() *V3 {
	return &V3{logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ChecksumV3"))}
}

func (v *V3) Version() string {
	return VersionV3
}

// Calculate returns "003_%_<common>" optionally followed by "_%_<per-type map>".
// A nil consent yields an empty checksum.
func (v *V3) Calculate(consent *model.Consent) []byte {
	if consent == nil {
		return []byte{}
	}

	common, err := v.commonDigest(consent)
	if err != nil {
		v.logger.Warn("Failed to serialise consent for checksum", log.String("consent_id", consent.ConsentID), log.Error(err))
		return []byte{}
	}

	var sb bytes.Buffer
	sb.WriteString(VersionV3)
	sb.WriteString(Delimiter)
	sb.WriteString(common)

	if !consent.AspspAccess.IsEmpty() {
		digests := digestsByReferenceType(consent.AspspAccess)
		if len(digests) > 0 {
			sb.WriteString(Delimiter)
			sb.WriteString(base64.StdEncoding.EncodeToString(encodeDigestMap(digests)))
		}
	}
	return sb.Bytes()
}

// Verify recomputes the digests of consent and compares them with checksum.
//
// Every reference type recorded in the stored map must still produce the same digest.
// Types that only appear in the current access are not checked, so access added after
// the checksum was written passes verification.
func (v *V3) Verify(consent *model.Consent, checksum []byte) bool {
	if consent == nil || checksum == nil {
		return false
	}

	parts := segments(checksum)
	if len(parts) < 2 {
		return false
	}

	common, err := v.commonDigest(consent)
	if err != nil || parts[1] != common {
		return false
	}

	if len(parts) < 3 {
		return true
	}

	stored, ok := decodeDigestMap(parts[2])
	if !ok {
		v.logger.Debug("Undecodable access segment in checksum", log.String("consent_id", consent.ConsentID))
		return false
	}
	current := digestsByReferenceType(consent.AspspAccess)
	for refType, digest := range stored {
		if digest == "" || current[refType] != digest {
			return false
		}
	}
	return true
}

func (v *V3) commonDigest(consent *model.Consent) (string, error) {
	payload, err := json.Marshal(commonFields{
		RecurringIndicator:       consent.RecurringIndicator,
		CombinedServiceIndicator: consent.CombinedServiceIndicator,
		ValidUntil:               utils.FormatDate(consent.ValidUntil),
		TppFrequencyPerDay:       consent.TppFrequencyPerDay,
		Accesses:                 consent.TppAccess,
	})
	if err != nil {
		return "", err
	}
	return hash(payload), nil
}

// digestsByReferenceType returns one digest per reference type that has at least one
// bank-enriched reference in access.
func digestsByReferenceType(access model.AccountAccess) map[model.AccountReferenceType]string {
	all := access.AllReferences()
	out := make(map[model.AccountReferenceType]string)
	for _, refType := range model.AccountReferenceTypes {
		filtered := make([]model.AccountReference, 0, len(all))
		for _, ref := range all {
			if ref.Type() == refType && ref.IsEnriched() {
				filtered = append(filtered, ref)
			}
		}
		if len(filtered) == 0 {
			continue
		}
		sortReferences(filtered)
		payload, err := json.Marshal(filtered)
		if err != nil {
			continue
		}
		out[refType] = hash(payload)
	}
	return out
}

// sortReferences orders references by currency, then by their identifiers so the
// digest does not depend on the order the bank listed them in.
func sortReferences(refs []model.AccountReference) {
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.Currency != b.Currency {
			return a.Currency < b.Currency
		}
		if a.ResourceID != b.ResourceID {
			return a.ResourceID < b.ResourceID
		}
		return a.AspspAccountID < b.AspspAccountID
	})
}

// encodeDigestMap writes the map as a JSON object with keys in reference-type order.
// encoding/json sorts map keys alphabetically, which would break that order.
func encodeDigestMap(digests map[model.AccountReferenceType]string) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, refType := range model.AccountReferenceTypes {
		digest, ok := digests[refType]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&buf, "%q:%q", string(refType), digest)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// decodeDigestMap reverses encodeDigestMap. Unknown reference types are rejected.
func decodeDigestMap(encoded string) (map[model.AccountReferenceType]string, bool) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	var decoded map[string]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, false
	}
	known := make(map[model.AccountReferenceType]bool, len(model.AccountReferenceTypes))
	for _, refType := range model.AccountReferenceTypes {
		known[refType] = true
	}
	out := make(map[model.AccountReferenceType]string, len(decoded))
	for key, digest := range decoded {
		refType := model.AccountReferenceType(key)
		if !known[refType] {
			return nil, false
		}
		out[refType] = digest
	}
	return out, true
}

func hash(payload []byte) string {
	sum := sha512.Sum512(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}
