package pipeline

import (
	"fmt"
	"time"

	"github.com/filingradar/filingradar/internal/domain"
)

const (
	DefaultCompany  = "Unknown Company"
	DefaultCategory = "Other"

	// Exchange attachments are published under a fixed public path; payloads
	// often carry only the file name.
	attachmentBaseURL = "https://www.bseindia.com/xml-data/corpfiling/AttachLive/%s"
)

// Key variants observed across feed generations, in lookup priority order.
var (
	companyKeys        = []string{"companyname", "company", "SLONGNAME", "company_name", "Company"}
	tickerKeys         = []string{"symbol", "Symbol", "ticker", "SCRIP_CD", "scrip_cd", "nsecode", "bsecode"}
	isinKeys           = []string{"ISIN", "isin", "sm_isin"}
	categoryKeys       = []string{"category", "Category", "CATEGORYNAME", "subcategory"}
	aiSummaryKeys      = []string{"ai_summary", "AI_SUMMARY"}
	summaryKeys        = []string{"summary", "Summary"}
	headlineKeys       = []string{"HEADLINE", "headline", "title"}
	bodyKeys           = []string{"MORE", "more", "details", "text", "desc"}
	detailKeys         = []string{"detailed_content", "description"}
	dateKeys           = []string{"date", "News_submission_dt", "news_submission_dt", "DissemDT", "dissemination_dt", "timestamp", "created_at"}
	attachmentURLKeys  = []string{"fileurl", "attachment_url", "ATTACHMENTURL"}
	attachmentNameKeys = []string{"ATTACHMENTNAME", "attachmentname"}
)

// Partial is the intermediate record between extraction and normalization.
type Partial struct {
	Company         string
	Ticker          string
	ISIN            string
	Category        string
	Summary         string
	DetailedContent string
	RawDate         string
	AttachmentURL   string
	Sentiment       domain.Sentiment
}

// Extract maps a raw payload of any known shape onto a Partial. It is a total
// function: every missing or malformed field resolves to its documented
// default, never an error.
func Extract(payload domain.RawPayload) Partial {
	p := Partial{
		Company:  payload.FirstString(companyKeys...),
		Ticker:   payload.FirstString(tickerKeys...),
		ISIN:     payload.FirstString(isinKeys...),
		Category: payload.FirstString(categoryKeys...),
		RawDate:  payload.FirstString(dateKeys...),
	}

	if p.Company == "" {
		p.Company = DefaultCompany
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.RawDate == "" {
		p.RawDate = time.Now().Format(time.RFC3339)
	}

	p.Summary = extractSummary(payload, p.Category)

	p.DetailedContent = payload.FirstString(detailKeys...)
	if p.DetailedContent == "" {
		p.DetailedContent = p.Summary
	}

	p.AttachmentURL = payload.FirstString(attachmentURLKeys...)
	if p.AttachmentURL == "" {
		if name := payload.FirstString(attachmentNameKeys...); name != "" {
			p.AttachmentURL = fmt.Sprintf(attachmentBaseURL, name)
		}
	}

	return p
}

// extractSummary prefers an AI-generated summary, then a plain summary field.
// With neither present it synthesizes the structured two-line header from the
// headline and body fields, and degrades to the bare headline.
func extractSummary(payload domain.RawPayload, category string) string {
	if s := payload.FirstString(aiSummaryKeys...); s != "" {
		return s
	}
	if s := payload.FirstString(summaryKeys...); s != "" {
		return s
	}

	headline := payload.FirstString(headlineKeys...)
	body := payload.FirstString(bodyKeys...)
	if headline != "" && body != "" {
		return fmt.Sprintf("%s %s\n%s %s\n\n%s", categoryMarker, category, headlineMarker, headline, body)
	}
	return headline
}
