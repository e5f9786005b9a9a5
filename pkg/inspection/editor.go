package inspection

import "fmt"

// 编辑操作直接作用于 InspectionForm。越界下标按调用方契约错误处理,
// 不做防御,由切片访问直接 panic。

// SetField 按线格式字段名覆写顶层标量字段。不做取值校验。
func (f *InspectionForm) SetField(name, value string) error {
	switch name {
	case "documentNo":
		f.DocumentNo = value
	case "issuanceNo":
		f.IssuanceNo = value
	case "issueDate":
		f.IssueDate = value
	case "reviewedDate":
		f.ReviewedDate = value
	case "page":
		f.Page = value
	case "preparedBy":
		f.PreparedBy = value
	case "approvedBy":
		f.ApprovedBy = value
	case "issued":
		f.Issued = value
	case "inspectionDate":
		f.InspectionDate = value
	case "product":
		f.Product = value
	case "sizeNo":
		f.SizeNo = value
	case "shift":
		f.Shift = value
	case "variant":
		f.Variant = value
	case "lineNo":
		f.LineNo = value
	case "customer":
		f.Customer = value
	case "sampleSize":
		f.SampleSize = value
	case "qaExecutive":
		f.QAExecutive = value
	case "qaSignature":
		f.QASignature = value
	case "productionOperator":
		f.ProductionOperator = value
	case "operatorSignature":
		f.OperatorSignature = value
	case "finalApprovalTime":
		f.FinalApprovalTime = value
	case "comments":
		f.Comments = value
	default:
		return fmt.Errorf("unknown form field: %s", name)
	}
	return nil
}

// SetLacquerField 覆写第 index 行涂料的一个字段,并同步重算批次组成。
func (f *InspectionForm) SetLacquerField(index int, field, value string) error {
	l := &f.Lacquers[index]
	switch field {
	case "name":
		l.Name = value
	case "weight":
		l.Weight = value
	case "batchNo":
		l.BatchNo = value
	case "expiryDate":
		l.ExpiryDate = value
	default:
		return fmt.Errorf("unknown lacquer field: %s", field)
	}
	f.SyncBatchComposition()
	return nil
}

// SetCharacteristicField 覆写第 index 行检验特性的一个字段
func (f *InspectionForm) SetCharacteristicField(index int, field, value string) error {
	c := &f.Characteristics[index]
	switch field {
	case "name":
		c.Name = value
	case "observation":
		c.Observation = value
	case "bodyThickness":
		c.BodyThickness = value
	case "bottomThickness":
		c.BottomThickness = value
	case "comments":
		c.Comments = value
	default:
		return fmt.Errorf("unknown characteristic field: %s", field)
	}
	return nil
}

// AddLacquerRow 追加一行空涂料,id 取当前最大 id+1,空表从 1 开始
func (f *InspectionForm) AddLacquerRow() Lacquer {
	next := 1
	for _, l := range f.Lacquers {
		if l.ID >= next {
			next = l.ID + 1
		}
	}
	row := Lacquer{ID: next}
	f.Lacquers = append(f.Lacquers, row)
	return row
}
