package bitrix

// Custom deal field codes tracked by this service.
const (
	FieldPriority        = "UF_CRM_1761801450"
	FieldDeadline        = "UF_CRM_1761286788"
	FieldReturnType      = "UF_CRM_1761285087347"
	FieldDemandType      = "UF_CRM_1761285615045"
	FieldExecutorCode    = "UF_CRM_1761700821514"
	FieldExecutor        = "UF_CRM_1761287067"
	FieldRevisionReason  = "UF_CRM_1761801018723"
	FieldCompletionNotes = "UF_CRM_1761288771741"
	FieldDeclineReason   = "UF_CRM_1761702301803"

	FieldCompanyTag = "UF_CRM_1763424498916"
)

type Deal struct {
	ID           string `json:"ID"`
	Title        string `json:"TITLE"`
	StageID      string `json:"STAGE_ID"`
	Opportunity  string `json:"OPPORTUNITY"`
	AssignedByID string `json:"ASSIGNED_BY_ID"`
	CreatedByID  string `json:"CREATED_BY_ID"`
	SourceID     string `json:"SOURCE_ID"`
	CompanyID    string `json:"COMPANY_ID"`
	ContactID    string `json:"CONTACT_ID"`
	DateCreate   string `json:"DATE_CREATE"`
	DateModify   string `json:"DATE_MODIFY"`
	Closed       string `json:"CLOSED"`

	Priority        string `json:"UF_CRM_1761801450"`
	Deadline        string `json:"UF_CRM_1761286788"`
	ReturnType      string `json:"UF_CRM_1761285087347"`
	DemandType      string `json:"UF_CRM_1761285615045"`
	ExecutorCode    string `json:"UF_CRM_1761700821514"`
	Executor        string `json:"UF_CRM_1761287067"`
	RevisionReason  string `json:"UF_CRM_1761801018723"`
	CompletionNotes string `json:"UF_CRM_1761288771741"`
	DeclineReason   string `json:"UF_CRM_1761702301803"`
}

type Company struct {
	ID    string `json:"ID"`
	Title string `json:"TITLE"`
	Tag   string `json:"UF_CRM_1763424498916"`
}

type FieldEnumItem struct {
	ID    string `json:"ID"`
	Value string `json:"VALUE"`
}

// FieldMeta is the per-field slice of crm.deal.fields; only list fields
// carry items.
type FieldMeta struct {
	Type  string          `json:"type"`
	Items []FieldEnumItem `json:"items"`
}

type dealResponse struct {
	Result *Deal `json:"result"`
}

type companyResponse struct {
	Result *Company `json:"result"`
}

type fieldsResponse struct {
	Result map[string]FieldMeta `json:"result"`
}
