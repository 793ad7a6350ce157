package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/shini4i/moninet/internal/control/protocol"
	"github.com/shini4i/moninet/internal/stats"
	"github.com/shini4i/moninet/internal/usage"
)

// Sampler is the part of the collector the control handler drives.
type Sampler interface {
	Latest() stats.Reading
	Reset() (usage.Totals, error)
	ToggleUnit() (stats.Unit, error)
}

// StatusFromReading renders a reading the way the overlay shows it.
func StatusFromReading(r stats.Reading) protocol.StatusResult {
	status := protocol.StatusResult{
		Kind:                r.Kind.String(),
		Unit:                string(r.Speed.Unit),
		Upload:              stats.FormatSpeed(r.Speed.Upload, r.Speed.Unit),
		Download:            stats.FormatSpeed(r.Speed.Download, r.Speed.Unit),
		UploadBytesPerSec:   r.Speed.UploadBytesPerSec,
		DownloadBytesPerSec: r.Speed.DownloadBytesPerSec,
		TotalUpload:         r.Totals.Uploaded,
		TotalDownload:       r.Totals.Downloaded,
		TotalUploadText:     stats.FormatSize(r.Totals.Uploaded),
		TotalDownloadText:   stats.FormatSize(r.Totals.Downloaded),
		PersistFailed:       r.PersistFailed,
	}
	if !r.Timestamp.IsZero() {
		status.Timestamp = r.Timestamp.Format(time.RFC3339)
	}
	return status
}

// NewHandler returns a RequestHandler that serves the control commands.
// onRestore is called for the restore command and may be nil.
func NewHandler(sampler Sampler, onRestore func()) RequestHandler {
	return func(req *protocol.Request) *protocol.Response {
		switch req.Command {
		case protocol.CommandStatus:
			return statusResponse(req.ID, sampler.Latest())

		case protocol.CommandReset:
			if _, err := sampler.Reset(); err != nil {
				return failure(req.ID, "Reset over control socket failed", err)
			}
			slog.Info("Usage totals reset over control socket")
			return statusResponse(req.ID, sampler.Latest())

		case protocol.CommandToggleUnit:
			if _, err := sampler.ToggleUnit(); err != nil {
				return failure(req.ID, "Unit toggle over control socket failed", err)
			}
			return statusResponse(req.ID, sampler.Latest())

		case protocol.CommandRestore:
			if onRestore != nil {
				onRestore()
			}
			return statusResponse(req.ID, sampler.Latest())

		default:
			return protocol.NewErrorResponse(req.ID, protocol.ErrCodeInvalidCommand, "unsupported command")
		}
	}
}

func statusResponse(id string, r stats.Reading) *protocol.Response {
	resp, err := protocol.NewSuccessResponse(id, StatusFromReading(r))
	if err != nil {
		return protocol.NewErrorResponse(id, protocol.ErrCodeInternalError, err.Error())
	}
	return resp
}

func failure(id, msg string, err error) *protocol.Response {
	slog.Warn(msg, "error", err)
	if errors.Is(err, stats.ErrCollectorStopped) {
		return protocol.NewErrorResponse(id, protocol.ErrCodeNotRunning, err.Error())
	}
	return protocol.NewErrorResponse(id, protocol.ErrCodePersistFailed, err.Error())
}
