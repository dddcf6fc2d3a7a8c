package service

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/finance"
	"github.com/jls/financesuite/finance-backend/internal/pdf"
)

// PortfolioColumns is the fixed column order shared by the on-screen table
// and the PDF export. Rows are formatted once, through FormatPortfolioRow,
// so the two paths cannot diverge.
var PortfolioColumns = []string{
	"Loan ID", "Customer", "Principal", "EMI", "Tenure", "Paid EMIs",
	"Collected", "Outstanding", "Status", "Disbursed On",
}

// PortfolioReport is the aggregated portfolio in presentation order
type PortfolioReport struct {
	Columns []string              `json:"columns"`
	Rows    []domain.PortfolioRow `json:"rows"`
}

// ReportService projects aggregated loan data into tabular reports and
// their PDF exports, and generates legal notices for overdue loans.
type ReportService struct {
	loanRepo     domain.LoanRepository
	customerRepo domain.CustomerRepository
	companyRepo  domain.CompanyRepository
}

// NewReportService creates a new ReportService
func NewReportService(
	loanRepo domain.LoanRepository,
	customerRepo domain.CustomerRepository,
	companyRepo domain.CompanyRepository,
) *ReportService {
	return &ReportService{
		loanRepo:     loanRepo,
		customerRepo: customerRepo,
		companyRepo:  companyRepo,
	}
}

// GetPortfolioReport builds the portfolio table for a company, ordered by
// disbursal date. Loans never disbursed are excluded.
func (s *ReportService) GetPortfolioReport(companyID int32) (*PortfolioReport, error) {
	loans, err := s.loanRepo.GetAllByCompany(companyID)
	if err != nil {
		return nil, err
	}
	customers, err := s.customerRepo.GetAllByCompany(companyID)
	if err != nil {
		return nil, err
	}
	names := make(map[int32]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	now := time.Now()
	var rows []domain.PortfolioRow
	for _, loan := range loans {
		if loan.DisbursalDate == nil {
			continue
		}
		paidCount := int32(0)
		for _, inst := range loan.Schedule {
			if inst.Status == domain.InstallmentStatusPaid {
				paidCount++
			}
		}
		rows = append(rows, domain.PortfolioRow{
			LoanID:        loan.ID,
			CustomerName:  names[loan.CustomerID],
			Principal:     loan.Amount,
			EMI:           loan.EMI,
			TenureMonths:  loan.TenureMonths,
			PaidCount:     paidCount,
			TotalPaid:     loan.TotalPaid(),
			Outstanding:   loan.Outstanding(),
			Status:        loan.EffectiveStatus(now),
			DisbursalDate: loan.DisbursalDate.Format("2006-01-02"),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DisbursalDate != rows[j].DisbursalDate {
			return rows[i].DisbursalDate < rows[j].DisbursalDate
		}
		return rows[i].LoanID < rows[j].LoanID
	})

	return &PortfolioReport{Columns: PortfolioColumns, Rows: rows}, nil
}

// FormatPortfolioRow renders one row's cells in PortfolioColumns order.
// Every monetary cell goes through the shared currency formatter.
func FormatPortfolioRow(row domain.PortfolioRow) []string {
	return []string{
		strconv.FormatInt(row.LoanID, 10),
		row.CustomerName,
		finance.FormatINR(row.Principal),
		finance.FormatINR(row.EMI),
		fmt.Sprintf("%d months", row.TenureMonths),
		fmt.Sprintf("%d/%d", row.PaidCount, row.TenureMonths),
		finance.FormatINR(row.TotalPaid),
		finance.FormatINR(row.Outstanding),
		string(row.Status),
		row.DisbursalDate,
	}
}

// ExportPortfolioPDF renders the portfolio report as a PDF document
func (s *ReportService) ExportPortfolioPDF(companyID int32) ([]byte, error) {
	report, err := s.GetPortfolioReport(companyID)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, err
	}

	cells := make([][]string, len(report.Rows))
	for i, row := range report.Rows {
		cells[i] = FormatPortfolioRow(row)
	}

	return pdf.RenderTable(pdf.TableDocument{
		Title:    company.Name,
		Subtitle: "Loan Portfolio Report — " + time.Now().Format("02 Jan 2006"),
		Columns:  report.Columns,
		Rows:     cells,
	})
}

// ExportLegalNoticePDF renders a demand notice for an overdue loan
func (s *ReportService) ExportLegalNoticePDF(companyID int32, loanID int64) ([]byte, error) {
	loan, err := s.loanRepo.GetByID(companyID, loanID)
	if err != nil {
		return nil, err
	}
	if loan.EffectiveStatus(time.Now()) != domain.LoanStatusOverdue {
		return nil, domain.ErrLoanNotOverdue
	}
	customer, err := s.customerRepo.GetByID(companyID, loan.CustomerID)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, err
	}

	next := loan.NextPendingInstallment()
	overdueSince := ""
	if next != nil {
		overdueSince = next.DueDate.Format("02 Jan 2006")
	}

	address := ""
	if customer.Address != nil {
		address = *customer.Address
	}

	return pdf.RenderLegalNotice(pdf.LegalNotice{
		CompanyName:     company.Name,
		CustomerName:    customer.Name,
		CustomerAddress: address,
		LoanID:          loanID,
		Principal:       finance.FormatINR(loan.Amount),
		Outstanding:     finance.FormatINR(loan.Outstanding()),
		EMI:             finance.FormatINR(loan.EMI),
		OverdueSince:    overdueSince,
		IssuedOn:        time.Now().Format("02 Jan 2006"),
	})
}
