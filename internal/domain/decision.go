package domain

// Reason explains why the policy engine accepted or rejected a posting.
type Reason string

const (
	ReasonAccepted            Reason = "accepted"
	ReasonBlacklistedCompany  Reason = "blacklisted_company"
	ReasonMissingRequiredTerm Reason = "missing_required_term"
	ReasonQuarantinedTerm     Reason = "quarantined_term"
	ReasonSeniorRoleExcluded  Reason = "senior_role_excluded"
	ReasonOracleRejected      Reason = "oracle_rejected"
)

// Decision is the outcome of evaluating one posting against one category
// policy.
type Decision struct {
	Accepted bool
	Reason   Reason
}

func Accept() Decision {
	return Decision{Accepted: true, Reason: ReasonAccepted}
}

func Reject(reason Reason) Decision {
	return Decision{Accepted: false, Reason: reason}
}
