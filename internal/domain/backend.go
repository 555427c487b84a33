package domain

type DisplayBackend string

const (
	BackendCompositor DisplayBackend = "compositor"
	BackendX11        DisplayBackend = "x11"
	BackendUnknown    DisplayBackend = "unknown"
)

type EmphasisResult string

const (
	EmphasisApplied EmphasisResult = "applied"
	EmphasisRefused EmphasisResult = "refused"
)
