// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package roles

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v3"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/retry"

	"github.com/ragstack/ragstack/internal/errorutils"
)

const (
	// Replication of a newly created principal across Entra can lag
	// behind the role assignment call.
	principalNotFoundCode = "PrincipalNotFound"

	// An identical assignment already in place is success.
	roleAssignmentExistsCode = "RoleAssignmentExists"

	retryDelay       = 5 * time.Second
	maxRetryDelay    = 1 * time.Minute
	maxRetryDuration = 5 * time.Minute
)

// Assigner executes role-assignment plans.
type Assigner struct {
	// Credential authenticates the authorization client.
	Credential azcore.TokenCredential

	// SubscriptionID is the subscription holding the scope.
	SubscriptionID string

	// ClientOptions configures the ARM clients; tests inject a
	// transport here.
	ClientOptions *arm.ClientOptions

	// Clock paces retries.
	Clock clock.Clock

	// NewUUID names new role assignments.
	NewUUID func() (uuid.UUID, error)
}

// Validate checks the assigner is complete.
func (a Assigner) Validate() error {
	if a.Credential == nil {
		return errors.NotValidf("nil Credential")
	}
	if a.SubscriptionID == "" {
		return errors.NotValidf("empty SubscriptionID")
	}
	if a.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if a.NewUUID == nil {
		return errors.NotValidf("nil NewUUID")
	}
	return nil
}

// Assign executes each assignment in the plan once, in order. A
// conflicting existing assignment is treated as success; a principal
// that has not replicated yet is retried with backoff. Any other
// failure aborts the remainder of the plan.
func (a Assigner) Assign(ctx context.Context, plan []Assignment) error {
	if err := a.Validate(); err != nil {
		return errors.Trace(err)
	}
	client, err := armauthorization.NewRoleAssignmentsClient(a.SubscriptionID, a.Credential, a.ClientOptions)
	if err != nil {
		return errors.Trace(err)
	}
	for _, assignment := range plan {
		if err := a.assignOne(ctx, client, assignment); err != nil {
			return errors.Annotatef(err, "assigning role %q", assignment.Role.Name)
		}
	}
	return nil
}

func (a Assigner) assignOne(ctx context.Context, client *armauthorization.RoleAssignmentsClient, assignment Assignment) error {
	assignmentName, err := a.NewUUID()
	if err != nil {
		return errors.Trace(err)
	}
	logger.Debugf("assigning %q to %s at %s", assignment.Role.Name, assignment.PrincipalID, assignment.Scope)
	return retry.Call(retry.CallArgs{
		Func: func() error {
			_, err := client.Create(ctx, assignment.Scope, assignmentName.String(),
				armauthorization.RoleAssignmentCreateParameters{
					Properties: &armauthorization.RoleAssignmentProperties{
						PrincipalID:      to.Ptr(assignment.PrincipalID),
						RoleDefinitionID: to.Ptr(assignment.roleDefinitionID),
					},
				}, nil,
			)
			if err != nil && errorutils.ErrorCode(err) == roleAssignmentExistsCode {
				logger.Infof("role %q already assigned", assignment.Role.Name)
				return nil
			}
			return err
		},
		IsFatalError: func(err error) bool {
			return errorutils.ErrorCode(err) != principalNotFoundCode
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Debugf("attempt %d: %v", attempt, err)
		},
		Attempts:    -1,
		Delay:       retryDelay,
		MaxDelay:    maxRetryDelay,
		MaxDuration: maxRetryDuration,
		BackoffFunc: retry.DoubleDelay,
		Clock:       a.Clock,
	})
}
