package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/yungbote/clientbase-backend/internal/data/repos"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

const (
	sheetClients  = "Clients"
	sheetContacts = "Contacts"
	exportTimeFmt = "2006-01-02 15:04"
)

var clientExportHeader = []string{
	"Name", "Company", "Status", "Priority", "Source", "Industry",
	"Primary Email", "Primary Phone", "Website", "Company Size",
	"Annual Revenue", "Tags", "Active Contacts", "Last Contact", "Created",
}

var contactExportHeader = []string{
	"Client", "First Name", "Last Name", "Email", "Phone", "Position",
	"Department", "Preferred Contact", "Timezone", "Primary",
}

type ExportService interface {
	// ExportClients renders the organization's live clients and their active
	// contacts as an XLSX workbook.
	ExportClients(ctx context.Context, orgID uuid.UUID) ([]byte, error)
}

type exportService struct {
	log        *logger.Logger
	clientRepo repos.ClientRepo
}

func NewExportService(log *logger.Logger, clientRepo repos.ClientRepo) ExportService {
	return &exportService{log: log.With("service", "ExportService"), clientRepo: clientRepo}
}

func (s *exportService) ExportClients(ctx context.Context, orgID uuid.UUID) ([]byte, error) {
	clients, err := s.clientRepo.List(dbctx.New(ctx), orgID, repos.ClientListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetClients); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetContacts); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := writeHeader(f, sheetClients, clientExportHeader, headerStyle); err != nil {
		return nil, err
	}
	if err := writeHeader(f, sheetContacts, contactExportHeader, headerStyle); err != nil {
		return nil, err
	}

	contactRow := 2
	for i, c := range clients {
		lastContact := ""
		if c.LastContactAt != nil {
			lastContact = c.LastContactAt.UTC().Format(exportTimeFmt)
		}
		row := []interface{}{
			c.Name, c.CompanyName, c.Status, c.Priority, c.Source, c.Industry,
			c.PrimaryEmail, c.PrimaryPhone, c.Website, c.CompanySize,
			c.AnnualRevenue, strings.Join(c.Tags, ", "), len(c.Contacts), lastContact,
			c.CreatedAt.UTC().Format(exportTimeFmt),
		}
		if err := writeRow(f, sheetClients, i+2, row); err != nil {
			return nil, err
		}
		for _, ct := range c.Contacts {
			primary := "No"
			if ct.IsPrimary {
				primary = "Yes"
			}
			if err := writeRow(f, sheetContacts, contactRow, []interface{}{
				c.Name, ct.FirstName, ct.LastName, ct.Email, ct.Phone, ct.Position,
				ct.Department, ct.PreferredContactMethod, ct.Timezone, primary,
			}); err != nil {
				return nil, err
			}
			contactRow++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.log.Debug("clients exported", "organization_id", orgID.String(), "clients", len(clients), "contacts", contactRow-2)
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, 20); err != nil {
			return fmt.Errorf("col width: %w", err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
