package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	jobmetrics "github.com/vb-entreprise/rrsa-server/internal/jobs"
	"github.com/vb-entreprise/rrsa-server/internal/observability"
	"github.com/vb-entreprise/rrsa-server/internal/roles"
	"github.com/vb-entreprise/rrsa-server/internal/users"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPermissionsRepair persists self-healed permission data onto a
	// profile so the next bootstrap takes the cheap path.
	TaskPermissionsRepair = "permissions:repair"
	// TaskRolesSeed runs the idempotent built-in role seeding.
	TaskRolesSeed = "roles:seed"
)

// PermissionsRepairPayload carries the resolved profile state to persist.
type PermissionsRepairPayload struct {
	SubjectID   string              `json:"subjectId"`
	Email       string              `json:"email"`
	DisplayName string              `json:"displayName"`
	Role        string              `json:"role"`
	Permissions authz.PermissionSet `json:"permissions"`
}

// NewPermissionsRepairTask constructs an Asynq task for a repair write.
func NewPermissionsRepairTask(payload PermissionsRepairPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPermissionsRepair, data), nil
}

// NewRolesSeedTask constructs an Asynq task for role seeding.
func NewRolesSeedTask() *asynq.Task {
	return asynq.NewTask(TaskRolesSeed, nil)
}

// PermissionsRepairJob processes TaskPermissionsRepair tasks. The write
// is a merge on a single profile document, so retries are harmless.
type PermissionsRepairJob struct {
	Profiles   *users.Repository
	Metrics    *observability.Metrics
	JobMetrics *jobmetrics.Metrics
	Logger     *slog.Logger
}

// Handle persists the payload's role and permissions onto the profile.
func (j *PermissionsRepairJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.JobMetrics.Track(TaskPermissionsRepair)
	var payload PermissionsRepairPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	err := j.Profiles.SaveResolvedPermissions(ctx, users.Profile{
		SubjectID:   payload.SubjectID,
		Email:       payload.Email,
		DisplayName: payload.DisplayName,
		Role:        payload.Role,
		Permissions: payload.Permissions,
	})
	if err != nil {
		j.Metrics.ObserveRepair("retry")
		if j.Logger != nil {
			j.Logger.Warn("permission repair write", slog.String("subject", payload.SubjectID), slog.Any("error", err))
		}
		return tracker.End(err)
	}
	j.Metrics.ObserveRepair("repaired")
	return tracker.End(nil)
}

// RolesSeedJob processes TaskRolesSeed tasks.
type RolesSeedJob struct {
	Catalog    *roles.Catalog
	JobMetrics *jobmetrics.Metrics
}

// Handle runs the idempotent seeding pass.
func (j *RolesSeedJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.JobMetrics.Track(TaskRolesSeed)
	j.Catalog.EnsureBuiltInRoles(ctx)
	return tracker.End(nil)
}

// Enqueuer hands tasks to the queue. It satisfies session.RepairQueue.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer wraps an Asynq client.
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueRepair queues a permission repair for the given profile state.
func (e *Enqueuer) EnqueueRepair(ctx context.Context, profile users.Profile) error {
	task, err := NewPermissionsRepairTask(PermissionsRepairPayload{
		SubjectID:   profile.SubjectID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Role:        profile.Role,
		Permissions: profile.Permissions,
	})
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
	return err
}
