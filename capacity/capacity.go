// Copyright 2026 Sectworks
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package capacity keeps authority roles within their configured holder
// limits. It maintains the assignment log from role-change events and, when
// a grant pushes a role over its limit, evicts the most recently assigned
// holder other than the one just granted.
//
// Enforcement is best effort: the platform directory is the authority on
// who holds a role, and near-simultaneous grants can each observe the set
// before the other's eviction lands. The limit converges on the next grant.
package capacity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sectworks/warden/database"
	"github.com/sectworks/warden/database/models"
	"github.com/sectworks/warden/event"
	"github.com/sectworks/warden/notify"
	"github.com/sectworks/warden/platform"
	"github.com/sectworks/warden/roles"
)

const (
	// DefaultAuditWindow is how far back a role grant may sit in the audit
	// log and still be attributed to a moderator.
	DefaultAuditWindow = time.Minute

	// DefaultAuditTimeout bounds the audit lookup itself. Attribution is
	// nice to have; it never holds up enforcement.
	DefaultAuditTimeout = 5 * time.Second

	// DefaultSuppressionWindow is how recent an eviction log entry must be
	// for the matching role-removed event to skip its own REMOVED entry.
	DefaultSuppressionWindow = time.Minute

	// RevokeReason is sent to the platform with every limit eviction.
	RevokeReason = "Role limit exceeded - removed newest member"
)

type EnforcerConfig struct {
	Logger            *slog.Logger
	EventBus          *event.EventBus
	Database          *database.Database
	Dispatcher        *notify.Dispatcher
	Registry          *roles.Registry
	Directory         platform.Directory
	Audit             platform.AuditSource
	PromRegistry      prometheus.Registerer
	AuditWindow       time.Duration
	AuditTimeout      time.Duration
	SuppressionWindow time.Duration
}

// Enforcer subscribes to member role changes and keeps the assignment log
// and HR activity log current for authority roles, enforcing holder limits
// on every grant.
type Enforcer struct {
	logger            *slog.Logger
	eventBus          *event.EventBus
	db                *database.Database
	dispatcher        *notify.Dispatcher
	registry          *roles.Registry
	directory         platform.Directory
	audit             platform.AuditSource
	auditWindow       time.Duration
	auditTimeout      time.Duration
	suppressionWindow time.Duration
	metrics           *enforcerMetrics
}

func New(cfg EnforcerConfig) (*Enforcer, error) {
	if cfg.EventBus == nil {
		return nil, fmt.Errorf("capacity enforcer requires an event bus")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("capacity enforcer requires a database")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("capacity enforcer requires a dispatcher")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("capacity enforcer requires a role registry")
	}
	if cfg.Directory == nil {
		return nil, fmt.Errorf("capacity enforcer requires a directory")
	}
	if cfg.Audit == nil {
		return nil, fmt.Errorf("capacity enforcer requires an audit source")
	}
	e := &Enforcer{
		logger:            cfg.Logger,
		eventBus:          cfg.EventBus,
		db:                cfg.Database,
		dispatcher:        cfg.Dispatcher,
		registry:          cfg.Registry,
		directory:         cfg.Directory,
		audit:             cfg.Audit,
		auditWindow:       cfg.AuditWindow,
		auditTimeout:      cfg.AuditTimeout,
		suppressionWindow: cfg.SuppressionWindow,
	}
	if e.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if e.auditWindow <= 0 {
		e.auditWindow = DefaultAuditWindow
	}
	if e.auditTimeout <= 0 {
		e.auditTimeout = DefaultAuditTimeout
	}
	if e.suppressionWindow <= 0 {
		e.suppressionWindow = DefaultSuppressionWindow
	}
	e.initMetrics(cfg.PromRegistry)
	// Setup event handlers
	e.eventBus.SubscribeFunc(
		platform.MemberRolesChangedEventType,
		e.handleRolesChanged,
	)
	return e, nil
}

func (e *Enforcer) handleRolesChanged(evt event.Event) {
	payload, ok := evt.Data.(platform.MemberRolesChangedEvent)
	if !ok {
		e.logger.Error(
			"unexpected event payload",
			"component", "capacity",
			"type", evt.Type,
		)
		return
	}
	added, removed := roles.Diff(payload.Before, payload.Member.Roles)
	ctx := context.Background()
	for _, role := range added {
		if e.registry.IsAuthority(role.ID) {
			e.handleRoleAdded(ctx, payload.Member, role)
		}
	}
	for _, role := range removed {
		if e.registry.IsAuthority(role.ID) {
			e.handleRoleRemoved(ctx, payload.Member, role)
		}
	}
}

func (e *Enforcer) handleRoleAdded(
	ctx context.Context,
	member platform.MemberSnapshot,
	role platform.Role,
) {
	moderator := e.roleModerator(ctx, member, role.ID)
	now := time.Now()
	if err := e.db.TrackAssignment(
		member.CommunityID,
		member.MemberID,
		role.ID,
		now,
	); err != nil {
		e.logger.Error(
			"failed to track role assignment",
			"component", "capacity",
			"community", member.CommunityID,
			"member", member.MemberID,
			"role", role.Name,
			"error", err,
		)
		return
	}
	if err := e.db.AddActivity(&models.HRActivity{
		CommunityID: member.CommunityID,
		HolderID:    member.MemberID,
		RoleID:      role.ID,
		Action:      models.ActivityActionAdded,
		Reason:      models.ActivityReasonManual,
		ModeratorID: moderator,
		Timestamp:   now,
	}); err != nil {
		e.logger.Error(
			"failed to log role assignment",
			"component", "capacity",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
	}
	e.metrics.assignments.Inc()
	evicted, err := e.EnforceLimit(
		ctx,
		member.CommunityID,
		role.ID,
		member.MemberID,
	)
	if err != nil {
		e.logger.Error(
			"failed to enforce role limit",
			"component", "capacity",
			"community", member.CommunityID,
			"role", role.Name,
			"error", err,
		)
		return
	}
	if evicted != 0 {
		e.logger.Info(
			"role limit enforced",
			"component", "capacity",
			"community", member.CommunityID,
			"role", role.Name,
			"evicted", evicted,
			"assigned", member.MemberID,
		)
	}
}

func (e *Enforcer) handleRoleRemoved(
	ctx context.Context,
	member platform.MemberSnapshot,
	role platform.Role,
) {
	if err := e.db.RemoveAssignment(
		member.CommunityID,
		member.MemberID,
		role.ID,
	); err != nil {
		e.logger.Error(
			"failed to remove role assignment",
			"component", "capacity",
			"community", member.CommunityID,
			"member", member.MemberID,
			"role", role.Name,
			"error", err,
		)
		return
	}
	// A removal the enforcer itself performed already has a log entry
	latest, err := e.db.LatestActivity(
		member.CommunityID,
		member.MemberID,
		role.ID,
	)
	if err != nil {
		e.logger.Error(
			"failed to check latest activity",
			"component", "capacity",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
		return
	}
	if latest != nil &&
		latest.Action == models.ActivityActionRemoved &&
		latest.Reason == models.ActivityReasonLimitExceeded &&
		time.Since(latest.Timestamp) < e.suppressionWindow {
		e.logger.Debug(
			"skipping removal log entry, eviction already recorded",
			"component", "capacity",
			"community", member.CommunityID,
			"member", member.MemberID,
			"role", role.Name,
		)
		return
	}
	if err := e.db.AddActivity(&models.HRActivity{
		CommunityID: member.CommunityID,
		HolderID:    member.MemberID,
		RoleID:      role.ID,
		Action:      models.ActivityActionRemoved,
		Reason:      models.ActivityReasonManual,
		Timestamp:   time.Now(),
	}); err != nil {
		e.logger.Error(
			"failed to log role removal",
			"component", "capacity",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
		return
	}
	e.metrics.removals.Inc()
}

// roleModerator attributes a grant to the moderator who performed it. Best
// effort with a strict timeout; 0 means unattributed.
func (e *Enforcer) roleModerator(
	ctx context.Context,
	member platform.MemberSnapshot,
	roleId uint64,
) uint64 {
	auditCtx, cancel := context.WithTimeout(ctx, e.auditTimeout)
	defer cancel()
	moderator, err := e.audit.RoleModerator(
		auditCtx,
		member.CommunityID,
		member.MemberID,
		roleId,
		e.auditWindow,
	)
	if err != nil {
		e.logger.Debug(
			"failed to attribute role grant",
			"component", "capacity",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
		return 0
	}
	return moderator
}

// EnforceLimit checks a role against its configured holder limit and evicts
// the most recently assigned holder, excluding justAssigned, when the live
// count exceeds it. Returns the evicted holder, 0 when nothing was evicted.
// The error return is reserved for store failures; platform failures are
// logged and leave the limit temporarily violated.
func (e *Enforcer) EnforceLimit(
	ctx context.Context,
	communityId uint64,
	roleId uint64,
	justAssigned uint64,
) (uint64, error) {
	limit, err := e.db.RoleLimit(communityId, roleId)
	if err != nil {
		return 0, err
	}
	if limit == nil {
		return 0, nil
	}
	holders, err := e.directory.RoleHolders(ctx, communityId, roleId)
	if err != nil {
		e.logger.Warn(
			"failed to count live role holders",
			"component", "capacity",
			"community", communityId,
			"role", roleId,
			"error", err,
		)
		return 0, nil
	}
	if len(holders) <= limit.MaxHolders {
		return 0, nil
	}
	candidate, err := e.db.NewestAssignmentExcluding(
		communityId,
		roleId,
		justAssigned,
	)
	if err != nil {
		return 0, err
	}
	if candidate == nil {
		// Over the limit with no recorded assignment to act on. The log
		// orders evictions, so without it the holder set stays as is.
		e.logger.Warn(
			"role over limit with no eviction candidate",
			"component", "capacity",
			"community", communityId,
			"role", roleId,
			"holders", len(holders),
			"limit", limit.MaxHolders,
		)
		e.metrics.anomalies.Inc()
		return 0, nil
	}
	if err := e.directory.RevokeRole(
		ctx,
		communityId,
		candidate.HolderID,
		roleId,
		RevokeReason,
	); err != nil {
		e.logger.Warn(
			"failed to revoke role for limit enforcement",
			"component", "capacity",
			"community", communityId,
			"member", candidate.HolderID,
			"role", roleId,
			"error", err,
		)
		return 0, nil
	}
	if err := e.db.RemoveAssignment(
		communityId,
		candidate.HolderID,
		roleId,
	); err != nil {
		return candidate.HolderID, err
	}
	if err := e.db.AddActivity(&models.HRActivity{
		CommunityID: communityId,
		HolderID:    candidate.HolderID,
		RoleID:      roleId,
		Action:      models.ActivityActionRemoved,
		Reason:      models.ActivityReasonLimitExceeded,
		Timestamp:   time.Now(),
	}); err != nil {
		return candidate.HolderID, err
	}
	e.metrics.evictions.Inc()
	rankName := e.registry.RankName(roleId)
	if rankName == "" {
		rankName = "Unknown Role"
	}
	// Let the evicted holder know; members with closed DMs just miss out
	e.dispatcher.DirectMessage(ctx, candidate.HolderID, platform.Message{
		Title: "High Rank Role Removed",
		Body: fmt.Sprintf(
			"Your %s role was automatically removed because the role "+
				"reached its member limit when it was assigned to another "+
				"member.\n\nReason: %s",
			rankName,
			RevokeReason,
		),
	})
	return candidate.HolderID, nil
}
