package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeNotifyOwner JobType = "notify_owner"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// MarkAsProcessing transitions the job into the processing state
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.ProcessedAt = &now
	j.UpdatedAt = now
}

// MarkAsCompleted transitions the job into the completed state
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed records a failure and bumps the retry counter
func (j *Job) MarkAsFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMsg = errMsg
	j.RetryCount++
	j.UpdatedAt = time.Now()
}

// MarkAsRetrying transitions the job into the retrying state
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

// IsRetryable reports whether the job has retries left
func (j *Job) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries
}

// NotifyOwnerPayload contains the payload for owner notification jobs
type NotifyOwnerPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ToMap converts the payload to a map for storage
func (p NotifyOwnerPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"title":   p.Title,
		"content": p.Content,
	}
}

// NotifyOwnerPayloadFromMap creates a payload from a map
func NotifyOwnerPayloadFromMap(data map[string]interface{}) (*NotifyOwnerPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var payload NotifyOwnerPayload
	if err := json.Unmarshal(jsonData, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
