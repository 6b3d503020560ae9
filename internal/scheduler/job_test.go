package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobHistory_CapsAtHundred(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "test", StartTime: time.Now(), Success: true})
	}

	assert.Len(t, h.Results, 100)
}

func TestJobHistory_SuccessRate(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.GetSuccessRate())

	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: false})

	assert.InDelta(t, 2.0/3.0, h.GetSuccessRate(), 1e-9)
	assert.Len(t, h.GetFailedResults(), 1)
}

func TestJobHistory_LatestResults(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 5; i++ {
		h.AddResult(JobResult{Success: true})
	}

	assert.Len(t, h.GetLatestResults(3), 3)
	assert.Len(t, h.GetLatestResults(10), 5)
	assert.Empty(t, (&JobHistory{}).GetLatestResults(3))
}
