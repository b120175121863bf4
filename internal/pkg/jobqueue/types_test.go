package jobqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatusTransitions(t *testing.T) {
	job := &Job{ID: "abc", Type: JobTypeLogoMirror, Status: JobStatusPending, MaxRetries: 2}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("upload refused")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "upload refused", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsFailed("upload refused")
	job.MarkAsFailed("upload refused")
	assert.False(t, job.IsRetryable())

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)
}

func TestLogoMirrorPayloadRoundTrip(t *testing.T) {
	in := LogoMirrorJobPayload{LogoID: 12, ProductID: 34}

	out, err := LogoMirrorJobPayloadFromMap(in.ToMap())
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}
