package transform

// DataIntegrityError is a transformer-detected inconsistency in the source
// payload, e.g. a tick time no timezone interval covers or an unknown sleep
// phase code. It is fatal: better to stop than to upload garbage.
type DataIntegrityError struct {
	XID    string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	if e.XID != "" {
		return "transform: " + e.XID + ": " + e.Reason
	}
	return "transform: " + e.Reason
}
