package inspection

// Role 用户角色(封闭枚举)
type Role string

const (
	RoleOperator Role = "operator" // 产线操作员
	RoleQA       Role = "qa"       // 质量执行
	RoleAVP      Role = "avp"      // 质量副总(审批人)
	RoleMaster   Role = "master"   // 系统管理员
)

// Valid 角色是否在封闭枚举内
func (r Role) Valid() bool {
	switch r {
	case RoleOperator, RoleQA, RoleAVP, RoleMaster:
		return true
	}
	return false
}

// FormStatus 检验报告状态
type FormStatus string

const (
	FormStatusDraft     FormStatus = "DRAFT"
	FormStatusSubmitted FormStatus = "SUBMITTED"
	FormStatusApproved  FormStatus = "APPROVED"
	FormStatusRejected  FormStatus = "REJECTED"
)

// Valid 状态是否在枚举内
func (s FormStatus) Valid() bool {
	switch s {
	case FormStatusDraft, FormStatusSubmitted, FormStatusApproved, FormStatusRejected:
		return true
	}
	return false
}

// Terminal 是否终态(终态不再流转)
func (s FormStatus) Terminal() bool {
	return s == FormStatusApproved || s == FormStatusRejected
}

// CapabilitySet 某角色对某状态报告的操作能力
type CapabilitySet struct {
	CanEditDocumentInfo      bool `json:"canEditDocumentInfo"`
	CanEditInspectionDetails bool `json:"canEditInspectionDetails"`
	CanEditLacquers          bool `json:"canEditLacquers"`
	CanEditCharacteristics   bool `json:"canEditCharacteristics"`
	CanSubmit                bool `json:"canSubmit"`
	CanApprove               bool `json:"canApprove"`
	CanReject                bool `json:"canReject"`
}

// ResolvePermissions 按角色与报告状态计算能力集。
// 规则:
//   - master 不受状态限制,拥有全部能力
//   - operator 仅在 DRAFT 可编辑与提交
//   - qa 仅在 SUBMITTED 可修正检验特性
//   - avp 仅在 SUBMITTED 可审批/驳回
//
// isOwner 为报告归属标记,当前规则不区分归属,参数保留给后续细分。
func ResolvePermissions(role Role, status FormStatus, isOwner bool) CapabilitySet {
	_ = isOwner

	master := role == RoleMaster
	operatorDraft := role == RoleOperator && status == FormStatusDraft

	return CapabilitySet{
		CanEditDocumentInfo:      master || operatorDraft,
		CanEditInspectionDetails: master || operatorDraft,
		CanEditLacquers:          master || operatorDraft,
		CanEditCharacteristics:   master || operatorDraft || (role == RoleQA && status == FormStatusSubmitted),
		CanSubmit:                master || operatorDraft,
		CanApprove:               master || (role == RoleAVP && status == FormStatusSubmitted),
		CanReject:                master || (role == RoleAVP && status == FormStatusSubmitted),
	}
}
