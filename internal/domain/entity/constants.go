package entity

// SubmissionStatus is the workflow stage of a submission
type SubmissionStatus string

// Status constants for Submission
const (
	StatusPending     SubmissionStatus = "pending"
	StatusUnderReview SubmissionStatus = "under_review"
	StatusAccepted    SubmissionStatus = "accepted"
	StatusRejected    SubmissionStatus = "rejected"
)

// IsValid reports whether s is a known submission status
func (s SubmissionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// IsFinal reports whether no further review transition is allowed
func (s SubmissionStatus) IsFinal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Role is the privilege class of a caller
type Role string

// Role constants
const (
	RoleOfficer  Role = "officer"
	RoleReviewer Role = "reviewer"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleOfficer || r == RoleReviewer
}

// DocumentType identifies the slot a document fills on a submission
type DocumentType string

// Document type constants
const (
	DocApplicationLetter        DocumentType = "application_letter"
	DocItemList                 DocumentType = "item_list"
	DocOperationalNeedStatement DocumentType = "operational_need_statement"
	DocNonRegistrationStatement DocumentType = "non_registration_statement"
	DocSpecificationAttachment  DocumentType = "specification_attachment"
	DocSupporting               DocumentType = "supporting_document"
	DocJustification            DocumentType = "justification"
)

// RequiredDocumentTypes lists the documents every new submission must carry
func RequiredDocumentTypes() []DocumentType {
	return []DocumentType{
		DocApplicationLetter,
		DocItemList,
		DocOperationalNeedStatement,
		DocNonRegistrationStatement,
		DocSpecificationAttachment,
	}
}

// IsBase reports whether t may be attached when the submission is created
func (t DocumentType) IsBase() bool {
	switch t {
	case DocApplicationLetter, DocItemList, DocOperationalNeedStatement,
		DocNonRegistrationStatement, DocSpecificationAttachment, DocSupporting:
		return true
	}
	return false
}

// JustificationStatus is the review state of a justification document
type JustificationStatus string

// Justification status constants
const (
	JustificationPending  JustificationStatus = "pending"
	JustificationApproved JustificationStatus = "approved"
	JustificationRejected JustificationStatus = "rejected"
)

// History action constants
const (
	ActionSubmissionCreated     = "submission.created"
	ActionSubmissionReviewed    = "submission.reviewed"
	ActionJustificationUploaded = "justification.uploaded"
	ActionJustificationReviewed = "justification.reviewed"
)
