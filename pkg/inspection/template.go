package inspection

import "time"

// 下拉枚举,与纸质表单一致
var (
	ShiftOptions   = []string{"A", "B", "C"}
	VariantOptions = []string{"Pink matt", "Blue matt", "Green matt", "Yellow matt"}
	LineOptions    = []string{"01", "02", "03", "04", "05"}
)

// NewTemplate 返回 AGI 涂装线首件检验报告的空白模板:
// 预置 8 行常用涂料与固定的 9 项检验特性清单,复检日期为签发日后三年。
func NewTemplate() *InspectionForm {
	now := time.Now()
	today := now.Format("2006-01-02")
	reviewed := now.AddDate(3, 0, 0).Format("2006-01-02")

	return &InspectionForm{
		IssuanceNo:     "00",
		IssueDate:      today,
		ReviewedDate:   reviewed,
		Page:           "1 of 1",
		PreparedBy:     "QQM QC",
		ApprovedBy:     "AVP-QA & SYS",
		Issued:         "AVP-QA & SYS",
		InspectionDate: today,
		Product:        "100 mL Bag Pke.",
		Shift:          "C",
		Variant:        "Pink matt",
		LineNo:         "02",
		SampleSize:     "08 Nos.",
		Lacquers: LacquerList{
			{ID: 1, Name: "Clear Extn"},
			{ID: 2, Name: "Red Dye"},
			{ID: 3, Name: "Black Dye"},
			{ID: 4, Name: "Pink Dye"},
			{ID: 5, Name: "Violet Dye"},
			{ID: 6, Name: "Matt Bath"},
			{ID: 7, Name: "Hardener"},
			{ID: 8},
		},
		Characteristics: CharacteristicList{
			{ID: 1, Name: "Colour Shade"},
			{ID: 2, Name: "(Colour Height)"},
			{ID: 3, Name: "Any Visual defect"},
			{ID: 4, Name: "MEK Test"},
			{ID: 5, Name: "Cross Cut Test (Tape Test)"},
			{ID: 6, Name: "Coating Thickness"},
			{ID: 7, Name: "Temperature"},
			{ID: 8, Name: "Viscosity"},
			{ID: 9, Name: BatchCompositionName},
		},
		Status: FormStatusDraft,
	}
}
