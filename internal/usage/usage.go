// Package usage persists cumulative upload/download totals across restarts.
package usage

// Totals holds cumulative bytes since the first run or the last explicit reset.
type Totals struct {
	// Uploaded is the cumulative number of bytes sent.
	Uploaded uint64
	// Downloaded is the cumulative number of bytes received.
	Downloaded uint64
}

// Add returns the totals advanced by the given byte counts.
func (t Totals) Add(sent, received uint64) Totals {
	return Totals{
		Uploaded:   t.Uploaded + sent,
		Downloaded: t.Downloaded + received,
	}
}

// IsZero reports whether both totals are zero.
func (t Totals) IsZero() bool {
	return t.Uploaded == 0 && t.Downloaded == 0
}

// record is the on-disk form of Totals.
type record struct {
	TotalUpload   uint64 `json:"total_upload"`
	TotalDownload uint64 `json:"total_download"`
}

const (
	keyUpload   = "total_upload"
	keyDownload = "total_download"
)
