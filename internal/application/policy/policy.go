// Package policy decides which caller may perform which submission operation.
// Decisions are made by a casbin enforcer over a role/operation/scope policy.
package policy

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

// Operation names a guarded action
type Operation string

const (
	OpSubmissionCreate    Operation = "submission.create"
	OpSubmissionList      Operation = "submission.list"
	OpSubmissionRead      Operation = "submission.read"
	OpSubmissionReview    Operation = "submission.review"
	OpSubmissionPurge     Operation = "submission.purge"
	OpJustificationUpload Operation = "justification.upload"
	OpJustificationReview Operation = "justification.review"
	OpDocumentRead        Operation = "document.read"
	OpReportExport        Operation = "report.export"
)

const (
	scopeAny = "any"
	scopeOwn = "own"
)

const modelText = `
[request_definition]
r = sub, act, caller, owner

[policy_definition]
p = sub, act, scope

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.act == p.act && (p.scope == "any" || r.caller == r.owner)
`

// DefaultPolicy grants officers access to their own submissions and reviewers access to everything
const DefaultPolicy = `
p, officer, submission.create, any
p, officer, submission.list, own
p, officer, submission.read, own
p, officer, justification.upload, own
p, officer, document.read, own
p, reviewer, submission.list, any
p, reviewer, submission.read, any
p, reviewer, submission.review, any
p, reviewer, submission.purge, any
p, reviewer, justification.review, any
p, reviewer, document.read, any
p, reviewer, report.export, any
`

// Authorizer evaluates access decisions
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
}

// New builds an Authorizer from CSV policy lines. An empty policy uses DefaultPolicy.
func New(policy string) (*Authorizer, error) {
	if strings.TrimSpace(policy) == "" {
		policy = DefaultPolicy
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("policy: invalid model: %w", err)
	}

	enf, err := casbin.NewSyncedEnforcer(m, stringadapter.NewAdapter(strings.TrimSpace(policy)))
	if err != nil {
		return nil, fmt.Errorf("policy: failed to initialize enforcer: %w", err)
	}

	return &Authorizer{enforcer: enf}, nil
}

// Can reports whether caller may perform op on a record owned by ownerID
func (a *Authorizer) Can(caller entity.Caller, op Operation, ownerID string) bool {
	if caller.ID == "" || !caller.Role.IsValid() {
		recordDecision(op, caller.Role, false)
		return false
	}

	ok, err := a.enforcer.Enforce(string(caller.Role), string(op), caller.ID, ownerID)
	if err != nil {
		ok = false
	}
	recordDecision(op, caller.Role, ok)
	return ok
}

// Authorize returns a Forbidden error when Can denies the request
func (a *Authorizer) Authorize(caller entity.Caller, op Operation, ownerID string) error {
	if a.Can(caller, op, ownerID) {
		return nil
	}
	return apperr.New(apperr.KindForbidden, "%s may not perform %s", describe(caller), op)
}

// ListFilter resolves the owner filter for a listing. An empty result means every owner.
func (a *Authorizer) ListFilter(caller entity.Caller) (string, error) {
	if caller.ID != "" && a.Can(caller, OpSubmissionList, "") {
		return "", nil
	}
	if a.Can(caller, OpSubmissionList, caller.ID) {
		return caller.ID, nil
	}
	return "", apperr.New(apperr.KindForbidden, "%s may not list submissions", describe(caller))
}

func describe(caller entity.Caller) string {
	if caller.Role == "" {
		return "anonymous caller"
	}
	return fmt.Sprintf("%s %q", caller.Role, caller.ID)
}
