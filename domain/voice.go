package domain

// VoiceProvenance tells whether a voice ships with the service or was cloned
// from a user sample during this session.
type VoiceProvenance string

const (
	VoiceBuiltIn VoiceProvenance = "built-in"
	VoiceCloned  VoiceProvenance = "cloned"
)

// VoiceProfile is a named synthesis voice. Cloned profiles live only in the
// in-memory registry and vanish on restart.
type VoiceProfile struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Style      string          `json:"style"`
	Provenance VoiceProvenance `json:"provenance"`

	// ProviderID is the upstream identifier used when synthesizing with this
	// profile. Not exposed to callers.
	ProviderID string `json:"-"`
}
