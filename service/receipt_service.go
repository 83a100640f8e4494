package service

import (
	"context"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/printer"
	"restaurant-pos/receipt"
	"restaurant-pos/repository"
)

// PDFRenderer turns an HTML document into PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// ReceiptService prints and exports order receipts
type ReceiptService struct {
	orders  repository.OrderRepositoryInterface
	printer ReceiptPrinter
	pdf     PDFRenderer
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(orders repository.OrderRepositoryInterface, printer ReceiptPrinter, pdf PDFRenderer) *ReceiptService {
	return &ReceiptService{orders: orders, printer: printer, pdf: pdf}
}

// Rows returns the fixed-width receipt of an order
func (s *ReceiptService) Rows(ctx context.Context, orderID int64) ([]string, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return receipt.Format(order), nil
}

// Print sends an order's receipt to the connected printer. Without a printer
// it fails before the order is even loaded.
func (s *ReceiptService) Print(ctx context.Context, orderID int64) error {
	if s.printer == nil || !s.printer.Connected() {
		return printer.ErrNotConnected
	}
	rows, err := s.Rows(ctx, orderID)
	if err != nil {
		return err
	}
	return s.printer.PrintReceipt(ctx, rows, receipt.HeaderRows)
}

// PDF renders an order's receipt as a PDF document
func (s *ReceiptService) PDF(ctx context.Context, orderID int64) ([]byte, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	html, err := receipt.RenderHTML(order)
	if err != nil {
		return nil, err
	}
	return s.pdf.RenderPDF(ctx, html)
}

// ChromePDF prints HTML through a headless Chrome
type ChromePDF struct {
	chromePath string
	timeout    time.Duration
}

// NewChromePDF uses chromePath when set, otherwise looks in common install locations
func NewChromePDF(chromePath string) *ChromePDF {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	return &ChromePDF{chromePath: chromePath, timeout: 30 * time.Second}
}

// detectChromePath returns the first Chrome/Chromium binary found, or ""
func detectChromePath() string {
	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// RenderPDF loads html into a blank page and prints it at receipt width (80mm)
func (c *ChromePDF) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if c.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(c.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(3.15). // 80mm in inches
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		log.Printf("❌ ReceiptPDF: %v", err)
		return nil, errors.Wrap(err, "failed to generate PDF")
	}

	log.Printf("✓ ReceiptPDF: rendered %d bytes", len(pdfBuf))
	return pdfBuf, nil
}
