package analysis

import "errors"

var (
	// ErrTrackNotFound means no uploaded file exists for the requested track.
	ErrTrackNotFound = errors.New("track not found in uploads")

	// ErrMalformedDocument means the provider's analysis document did not
	// have the expected shape.
	ErrMalformedDocument = errors.New("malformed analysis document")

	// ErrJobFailed means the provider reported a terminal Failed or
	// Cancelled status for the analysis job.
	ErrJobFailed = errors.New("analysis job did not succeed")

	// ErrPollTimeout means the job did not reach a terminal status within
	// the configured polling budget.
	ErrPollTimeout = errors.New("timed out waiting for analysis job")
)
