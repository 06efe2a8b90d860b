package governance

import "time"

type Stage string

const (
	StageHRReview       Stage = "hr_review"
	StageBusinessReview Stage = "business_review"
	StageSecurityReview Stage = "security_review"
)

// StageOrder is the fixed review sequence. The position of a record in a
// version's approval ledger must match its index here.
var StageOrder = []Stage{
	StageHRReview,
	StageBusinessReview,
	StageSecurityReview,
}

func (s Stage) Valid() bool {
	for _, st := range StageOrder {
		if st == s {
			return true
		}
	}
	return false
}

// ExpectedStage returns the stage that must be recorded at position n.
// ok is false once every stage has a record.
func ExpectedStage(n int) (Stage, bool) {
	if n < 0 || n >= len(StageOrder) {
		return "", false
	}
	return StageOrder[n], true
}

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

func (d Decision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

type ApprovalRecord struct {
	Stage      Stage     `json:"stage"`
	Decision   Decision  `json:"decision"`
	Comment    string    `json:"comment"`
	Reviewer   string    `json:"reviewer"`
	ReviewedAt time.Time `json:"reviewedAt"`
}

// NewApproval is a reviewer's decision for the next stage of a version.
type NewApproval struct {
	PackCode  string
	VersionNo int
	Stage     Stage
	Decision  Decision
	Comment   string
	Reviewer  string
}

// WorkflowState names the position of a version in the approval state machine.
type WorkflowState string

const (
	StateNoApprovals        WorkflowState = "no_approvals"
	StateHRReviewDone       WorkflowState = "hr_review_done"
	StateBusinessReviewDone WorkflowState = "business_review_done"
	StateSecurityReviewDone WorkflowState = "security_review_done"
	StateBlocked            WorkflowState = "blocked"
)

// StateOf derives the workflow state from an approval ledger.
func StateOf(records []*ApprovalRecord) WorkflowState {
	for _, r := range records {
		if r.Decision != DecisionApproved {
			return StateBlocked
		}
	}
	if len(records) == 0 {
		return StateNoApprovals
	}
	last := records[len(records)-1].Stage
	return WorkflowState(string(last) + "_done")
}

// FullyApproved reports whether the ledger is exactly the stage order with
// every decision approved.
func FullyApproved(records []*ApprovalRecord) bool {
	if len(records) != len(StageOrder) {
		return false
	}
	for i, st := range StageOrder {
		r := records[i]
		if r == nil || r.Stage != st || r.Decision != DecisionApproved {
			return false
		}
	}
	return true
}
