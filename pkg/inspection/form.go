package inspection

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Lacquer 批次组成中的一行涂料/染料
type Lacquer struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Weight     string `json:"weight"`
	BatchNo    string `json:"batchNo"`
	ExpiryDate string `json:"expiryDate"`
}

// Unit 称量单位:Clear Extn 用 kg,其余用 gm
func (l Lacquer) Unit() string {
	if l.Name == "Clear Extn" {
		return "kg"
	}
	return "gm"
}

// Characteristic 检验特性清单中的一行。
// id=6(Coating Thickness)用 bodyThickness/bottomThickness 替代 observation,
// id=9(Batch Composition)的 observation 为派生值,不可手工编辑。
type Characteristic struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Observation     string `json:"observation"`
	BodyThickness   string `json:"bodyThickness,omitempty"`
	BottomThickness string `json:"bottomThickness,omitempty"`
	Comments        string `json:"comments"`
}

// LacquerList jsonb 列类型
type LacquerList []Lacquer

func (l LacquerList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(LacquerList{})
	}
	return json.Marshal(l)
}

func (l *LacquerList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan LacquerList: %v", value)
	}
	return json.Unmarshal(bytes, l)
}

// CharacteristicList jsonb 列类型
type CharacteristicList []Characteristic

func (c CharacteristicList) Value() (driver.Value, error) {
	if c == nil {
		return json.Marshal(CharacteristicList{})
	}
	return json.Marshal(c)
}

func (c *CharacteristicList) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan CharacteristicList: %v", value)
	}
	return json.Unmarshal(bytes, c)
}

// InspectionForm 首件检验报告(FAIR)。既是领域模型也是持久化实体,
// json 字段名即对外线格式。
type InspectionForm struct {
	ID string `json:"id,omitempty" gorm:"primaryKey;size:32"`

	// 文档信息
	DocumentNo   string `json:"documentNo" gorm:"size:100"`
	IssuanceNo   string `json:"issuanceNo" gorm:"size:50"`
	IssueDate    string `json:"issueDate" gorm:"size:50"`
	ReviewedDate string `json:"reviewedDate" gorm:"size:50"`
	Page         string `json:"page" gorm:"size:20"`
	PreparedBy   string `json:"preparedBy" gorm:"size:100"`
	ApprovedBy   string `json:"approvedBy" gorm:"size:100"`
	Issued       string `json:"issued" gorm:"size:100"`

	// 检验明细
	InspectionDate string `json:"inspectionDate" gorm:"size:50"`
	Product        string `json:"product" gorm:"size:200"`
	SizeNo         string `json:"sizeNo" gorm:"size:50"`
	Shift          string `json:"shift" gorm:"size:10"`
	Variant        string `json:"variant" gorm:"size:50"`
	LineNo         string `json:"lineNo" gorm:"size:10"`
	Customer       string `json:"customer" gorm:"size:200"`
	SampleSize     string `json:"sampleSize" gorm:"size:50"`

	// 批次组成与检验特性
	Lacquers        LacquerList        `json:"lacquers" gorm:"type:jsonb"`
	Characteristics CharacteristicList `json:"characteristics" gorm:"type:jsonb"`

	// 签核
	QAExecutive        string `json:"qaExecutive" gorm:"size:100"`
	QASignature        string `json:"qaSignature" gorm:"size:200"`
	ProductionOperator string `json:"productionOperator" gorm:"size:100"`
	OperatorSignature  string `json:"operatorSignature" gorm:"size:200"`
	FinalApprovalTime  string `json:"finalApprovalTime" gorm:"size:50"`

	// 工作流
	Status      FormStatus `json:"status" gorm:"size:20;default:DRAFT;index"`
	SubmittedBy string     `json:"submittedBy" gorm:"size:100;index"`
	SubmittedAt *time.Time `json:"submittedAt"`
	ReviewedBy  string     `json:"reviewedBy" gorm:"size:100"`
	ReviewedAt  *time.Time `json:"reviewedAt"`
	Comments    string     `json:"comments" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (InspectionForm) TableName() string {
	return "qis_inspection_forms"
}

// BatchCompositionName 派生特性行的名称
const BatchCompositionName = "Batch Composition"

// SignatureToken 由用户姓名生成签名令牌:小写、空白替换为下划线,
// 前缀 signed_by_。
func SignatureToken(name string) string {
	slug := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, strings.ToLower(name))
	return "signed_by_" + slug
}

// BatchComposition 按行顺序拼接 "{name} {weight}",
// name 或 weight 任一为空的行跳过。
func BatchComposition(lacquers []Lacquer) string {
	parts := make([]string, 0, len(lacquers))
	for _, l := range lacquers {
		if l.Name != "" && l.Weight != "" {
			parts = append(parts, l.Name+" "+l.Weight)
		}
	}
	return strings.Join(parts, " ")
}

// SyncBatchComposition 将派生的批次组成写回特性清单。
// 每次涂料编辑后必须与编辑同步调用,二者对外不可分割。
func (f *InspectionForm) SyncBatchComposition() {
	composition := BatchComposition(f.Lacquers)
	for i := range f.Characteristics {
		if f.Characteristics[i].Name == BatchCompositionName {
			f.Characteristics[i].Observation = composition
			return
		}
	}
}
