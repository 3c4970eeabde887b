package worker

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/marincop/internal/model"
)

// NotificationExtensions are the file types picked up by batch ingestion
var NotificationExtensions = map[string]bool{
	".txt":  true,
	".eml":  true,
	".html": true,
	".htm":  true,
}

// Drafter prepares an unnumbered claim from notification text
type Drafter interface {
	Draft(ctx context.Context, createdBy, rawText string) (*model.Claim, error)
}

// DraftJob drafts one notification file
type DraftJob struct {
	Path      string
	CreatedBy string
	Drafter   Drafter
}

// Execute reads the file and drafts a claim from it
func (j *DraftJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &DraftResult{Path: j.Path, Error: err}
	}

	text, err := ReadNotification(j.Path)
	if err != nil {
		return &DraftResult{Path: j.Path, Error: err}
	}

	claim, err := j.Drafter.Draft(ctx, j.CreatedBy, text)
	if err != nil {
		return &DraftResult{Path: j.Path, Error: err}
	}
	return &DraftResult{Path: j.Path, Claim: claim}
}

// DraftResult represents the result of a draft job
type DraftResult struct {
	Path  string
	Claim *model.Claim
	Error error
}

// GetError returns the error from the draft result
func (r *DraftResult) GetError() error {
	return r.Error
}

// BatchProcessor drafts many notifications concurrently
type BatchProcessor struct {
	drafter     Drafter
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(drafter Drafter, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		drafter:     drafter,
		concurrency: concurrency,
	}
}

// ProcessFiles drafts every file and returns results ordered by path
func (b *BatchProcessor) ProcessFiles(ctx context.Context, createdBy string, paths []string) []*DraftResult {
	if len(paths) == 0 {
		return []*DraftResult{}
	}

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	jobs := make([]Job, len(sorted))
	for i, p := range sorted {
		jobs[i] = &DraftJob{Path: p, CreatedBy: createdBy, Drafter: b.drafter}
	}

	results := NewPool(b.concurrency).Run(ctx, jobs)

	out := make([]*DraftResult, len(results))
	for i, r := range results {
		out[i] = r.(*DraftResult)
	}
	return out
}

// ProcessDir drafts every notification file in dir
func (b *BatchProcessor) ProcessDir(ctx context.Context, createdBy, dir string) ([]*DraftResult, error) {
	paths, err := ListNotificationFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return b.ProcessFiles(ctx, createdBy, paths), nil
}

// ListNotificationFiles returns notification files directly under dir, sorted
func ListNotificationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if NotificationExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	return paths, nil
}

// ReadNotification returns the text of a notification file. For .eml files
// the subject and the first text body part are returned.
func ReadNotification(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read notification: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".eml") {
		// Unparseable messages fall back to plain text
		if text, err := emailText(string(data)); err == nil {
			return text, nil
		}
	}

	return string(data), nil
}

func emailText(raw string) (string, error) {
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	body, err := bodyText(msg.Header.Get("Content-Type"), msg.Body)
	if err != nil {
		return "", err
	}

	subject := msg.Header.Get("Subject")
	if dec, err := new(mime.WordDecoder).DecodeHeader(subject); err == nil {
		subject = dec
	}
	if subject == "" {
		return body, nil
	}
	return "Subject: " + subject + "\n\n" + body, nil
}

// bodyText picks text/plain over text/html from a possibly multipart body
func bodyText(contentType string, body io.Reader) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		b, err := io.ReadAll(body)
		return string(b), err
	}

	var htmlPart string
	mr := multipart.NewReader(body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		switch {
		case strings.HasPrefix(partType, "multipart/"):
			if text, err := bodyText(part.Header.Get("Content-Type"), part); err == nil && text != "" {
				return text, nil
			}
		case partType == "text/plain" || partType == "":
			b, err := io.ReadAll(part)
			if err != nil {
				return "", err
			}
			return string(b), nil
		case partType == "text/html" && htmlPart == "":
			b, err := io.ReadAll(part)
			if err != nil {
				return "", err
			}
			htmlPart = string(b)
		}
	}

	return htmlPart, nil
}
