package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/chinedu-obi/medibill/internal/invoice"
	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/payment"
)

type itemResponse struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

type invoiceResponse struct {
	ID            uuid.UUID      `json:"id"`
	Number        string         `json:"number"`
	PatientID     string         `json:"patient_id"`
	PatientName   string         `json:"patient_name"`
	Amount        int64          `json:"amount"`
	Items         []itemResponse `json:"items"`
	DueDate       time.Time      `json:"due_date"`
	Status        invoice.Status `json:"status"`
	PaymentMethod ledger.Method  `json:"payment_method,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

func toResponse(inv *invoice.Invoice, now time.Time) invoiceResponse {
	items := make([]itemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, itemResponse{Description: item.Description, Amount: item.Amount})
	}

	return invoiceResponse{
		ID:            inv.ID,
		Number:        inv.Number,
		PatientID:     inv.PatientID,
		PatientName:   inv.PatientName,
		Amount:        inv.Amount,
		Items:         items,
		DueDate:       inv.DueDate,
		Status:        inv.EffectiveStatus(now),
		PaymentMethod: inv.PaymentMethod,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

func toResponseList(invoices []*invoice.Invoice, now time.Time) []invoiceResponse {
	resp := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = toResponse(inv, now)
	}

	return resp
}

type entryResponse struct {
	ID          uuid.UUID     `json:"id"`
	InvoiceID   *uuid.UUID    `json:"invoice_id,omitempty"`
	PatientID   string        `json:"patient_id"`
	Type        ledger.Type   `json:"type"`
	Method      ledger.Method `json:"method"`
	Status      ledger.Status `json:"status"`
	Amount      int64         `json:"amount"`
	Description string        `json:"description"`
	Reference   string        `json:"reference"`
	Bank        string        `json:"bank,omitempty"`
	CashierName string        `json:"cashier_name,omitempty"`
	FailReason  string        `json:"fail_reason,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func toEntryResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		InvoiceID:   e.InvoiceID,
		PatientID:   e.PatientID,
		Type:        e.Type,
		Method:      e.Method,
		Status:      e.Status,
		Amount:      e.Amount,
		Description: e.Description,
		Reference:   e.Reference,
		Bank:        e.Bank,
		CashierName: e.CashierName,
		FailReason:  e.FailReason,
		CreatedAt:   e.CreatedAt,
	}
}

func toEntryResponseList(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toEntryResponse(e)
	}

	return resp
}

type receiptResponse struct {
	EntryID       uuid.UUID     `json:"entry_id"`
	InvoiceID     *uuid.UUID    `json:"invoice_id,omitempty"`
	InvoiceNumber string        `json:"invoice_number,omitempty"`
	PatientID     string        `json:"patient_id"`
	Type          ledger.Type   `json:"type"`
	Method        ledger.Method `json:"method"`
	Amount        int64         `json:"amount"`
	Reference     string        `json:"reference"`
	CashierName   string        `json:"cashier_name,omitempty"`
	ProcessedAt   time.Time     `json:"processed_at"`
	Duplicate     bool          `json:"duplicate"`
}

func toReceiptResponse(receipt *payment.Receipt) receiptResponse {
	return receiptResponse{
		EntryID:       receipt.EntryID,
		InvoiceID:     receipt.InvoiceID,
		InvoiceNumber: receipt.InvoiceNumber,
		PatientID:     receipt.PatientID,
		Type:          receipt.Type,
		Method:        receipt.Method,
		Amount:        receipt.Amount,
		Reference:     receipt.Reference,
		CashierName:   receipt.CashierName,
		ProcessedAt:   receipt.ProcessedAt,
		Duplicate:     receipt.Duplicate,
	}
}
