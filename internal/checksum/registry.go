package checksum

import (
	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
)

// Registry resolves the codec that wrote a stored checksum.
type Registry struct {
	codecs  map[string]Codec
	current Codec
}

// NewRegistry builds a registry from codecs. The last codec is used for new checksums.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{codecs: make(map[string]Codec, len(codecs))}
	for _, codec := range codecs {
		r.codecs[codec.Version()] = codec
		r.current = codec
	}
	return r
}

// NewDefaultRegistry returns a registry holding every supported version.
func NewDefaultRegistry() *Registry {
	return NewRegistry(NewV3())
}

// Default returns the codec used to write new checksums.
func (r *Registry) Default() Codec {
	return r.current
}

// Resolve returns the codec matching the version prefix of checksum.
func (r *Registry) Resolve(checksum []byte) (Codec, bool) {
	codec, ok := r.codecs[versionOf(checksum)]
	return codec, ok
}

// Calculate computes a checksum with the default codec.
func (r *Registry) Calculate(consent *model.Consent) []byte {
	if r.current == nil {
		return []byte{}
	}
	return r.current.Calculate(consent)
}

// Verify checks consent against checksum using the codec that wrote it.
// Checksums with an unknown or missing version never verify.
func (r *Registry) Verify(consent *model.Consent, checksum []byte) bool {
	codec, ok := r.Resolve(checksum)
	if !ok {
		return false
	}
	return codec.Verify(consent, checksum)
}
