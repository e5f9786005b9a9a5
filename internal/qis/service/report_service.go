package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bitfantasy/fair-qms/internal/qis/repository"
	"github.com/bitfantasy/fair-qms/pkg/inspection"
	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportService 报表服务:将检验报告渲染为可打印的Excel,
// 审批通过后归档到对象存储。
type ReportService struct {
	formRepo    *repository.FormRepository
	minioClient *minio.Client
	bucket      string
	logger      *zap.Logger
}

// NewReportService 创建报表服务。minioClient为nil时归档自动禁用。
func NewReportService(formRepo *repository.FormRepository, minioClient *minio.Client, bucket string, logger *zap.Logger) *ReportService {
	return &ReportService{formRepo: formRepo, minioClient: minioClient, bucket: bucket, logger: logger}
}

// Render 渲染单份报告为Excel表单
func (s *ReportService) Render(ctx context.Context, id string) (*excelize.File, string, error) {
	form, err := s.formRepo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	f, err := s.render(form)
	if err != nil {
		return nil, "", err
	}

	name := form.DocumentNo
	if name == "" {
		name = form.ID
	}
	filename := fmt.Sprintf("FAIR_%s.xlsx", name)
	return f, filename, nil
}

func (s *ReportService) render(form *inspection.InspectionForm) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "FAIR"
	f.SetSheetName("Sheet1", sheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	headStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	// 标题与文档信息
	f.MergeCell(sheet, "A1", "F1")
	f.SetCellValue(sheet, "A1", "First Article Inspection Report")
	f.SetCellStyle(sheet, "A1", "F1", titleStyle)

	docInfo := [][2]string{
		{"Document No", form.DocumentNo},
		{"Issuance No", form.IssuanceNo},
		{"Issue Date", form.IssueDate},
		{"Reviewed Date", form.ReviewedDate},
		{"Page", form.Page},
		{"Prepared By", form.PreparedBy},
		{"Approved By", form.ApprovedBy},
		{"Issued", form.Issued},
	}
	row := 3
	for _, kv := range docInfo {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), kv[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), kv[1])
		row++
	}

	// 检验明细
	row++
	details := [][2]string{
		{"Inspection Date", form.InspectionDate},
		{"Product", form.Product},
		{"Size No", form.SizeNo},
		{"Shift", form.Shift},
		{"Variant", form.Variant},
		{"Line No", form.LineNo},
		{"Customer", form.Customer},
		{"Sample Size", form.SampleSize},
	}
	for _, kv := range details {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), kv[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), kv[1])
		row++
	}

	// 批次组成表
	row++
	lacquerHeaders := []string{"No.", "Lacquer / Dye", "Weight", "Unit", "Batch No", "Expiry Date"}
	for i, h := range lacquerHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s%d", col, row)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headStyle)
	}
	row++
	for _, l := range form.Lacquers {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), l.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), l.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), l.Weight)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), l.Unit())
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), l.BatchNo)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), l.ExpiryDate)
		row++
	}

	// 检验特性表。Coating Thickness 行展开为 body/bottom 两个观测值。
	row++
	charHeaders := []string{"No.", "Characteristic", "Observation", "Comments"}
	for i, h := range charHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s%d", col, row)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headStyle)
	}
	row++
	for _, c := range form.Characteristics {
		observation := c.Observation
		if c.BodyThickness != "" || c.BottomThickness != "" {
			observation = fmt.Sprintf("Body: %s / Bottom: %s", c.BodyThickness, c.BottomThickness)
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), c.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), c.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), observation)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), c.Comments)
		row++
	}

	// 签核与流转信息
	row++
	signoff := [][2]string{
		{"QA Executive", form.QAExecutive},
		{"QA Signature", form.QASignature},
		{"Production Operator", form.ProductionOperator},
		{"Operator Signature", form.OperatorSignature},
		{"Final Approval Time", form.FinalApprovalTime},
		{"Status", string(form.Status)},
		{"Submitted By", form.SubmittedBy},
		{"Reviewed By", form.ReviewedBy},
		{"Comments", form.Comments},
	}
	for _, kv := range signoff {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), kv[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), kv[1])
		row++
	}

	colWidths := []float64{18, 28, 24, 10, 16, 16}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	return f, nil
}

// Archive 将已审批报告的报表写入对象存储。未配置MinIO时为空操作。
func (s *ReportService) Archive(ctx context.Context, form *inspection.InspectionForm) error {
	if s.minioClient == nil {
		return nil
	}

	f, err := s.render(form)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	objectName := fmt.Sprintf("reports/%s.xlsx", form.ID)
	_, err = s.minioClient.PutObject(ctx, s.bucket, objectName, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	})
	if err != nil {
		return fmt.Errorf("upload report: %w", err)
	}

	s.logger.Info("archived approved form report",
		zap.String("form_id", form.ID), zap.String("object", objectName))
	return nil
}
