package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"case-management-api/models"

	"gorm.io/gorm"
)

var (
	// ErrITSNotFound marks a permanently missing ITS record; callers flag the
	// applicant so the number is not retried.
	ErrITSNotFound = errors.New("its record not found")
	// ErrITSUnavailable marks a transient upstream failure worth retrying.
	ErrITSUnavailable = errors.New("its service unavailable")

	itsNumberPattern = regexp.MustCompile(`^\d{8}$`)
)

const (
	itsCallLimit  = 20
	itsCallWindow = 3 * time.Minute
	// Safety margin added when sleeping for the window to open up.
	itsWindowBuffer = time.Second

	itsRequestTimeout = 10 * time.Second
)

// ValidateITSNumber checks the 8-digit format of an ITS number.
func ValidateITSNumber(its string) bool {
	return itsNumberPattern.MatchString(its)
}

// slidingWindow is the process-wide call budget for the demographics
// endpoint. When the window is full, Acquire blocks until the oldest call
// ages out. State is in-memory only; a restart resets it.
type slidingWindow struct {
	mu    sync.Mutex
	limit int
	span  time.Duration
	calls []time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

func newSlidingWindow(limit int, span time.Duration) *slidingWindow {
	return &slidingWindow{
		limit: limit,
		span:  span,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

func (w *slidingWindow) Acquire() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		now := w.now()
		cutoff := now.Add(-w.span)
		kept := w.calls[:0]
		for _, t := range w.calls {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		w.calls = kept

		if len(w.calls) < w.limit {
			w.calls = append(w.calls, now)
			return
		}

		wait := w.calls[0].Sub(cutoff) + itsWindowBuffer
		log.Printf("ITS rate limit reached (%d calls / %v), sleeping %v", w.limit, w.span, wait)
		w.sleep(wait)
	}
}

// ApplicantData is the normalized shape returned by the gateway.
type ApplicantData struct {
	ITSNumber string
	FullName  string
	Phone     *string
	Gender    *string // male|female|other
	JamiatID  *int    // internal surrogate key
	JamaatID  *int
	Photo     []byte // nil when the photo fetch failed
}

// itsRecord is the upstream demographics payload.
type itsRecord struct {
	Fullname  string `json:"Fullname"`
	Mobile    string `json:"Mobile"`
	JamiaatID *int   `json:"Jamiaat_ID"`
	JamaatID  *int   `json:"Jamaat_ID"`
	Gender    string `json:"Gender"` // M|F|other
}

// ITSGateway fetches applicant demographics and photos from the two
// third-party ITS endpoints and maps them into the internal schema.
type ITSGateway struct {
	db       *gorm.DB
	client   *http.Client
	dataURL  string
	photoURL string
	apiToken string
	limiter  *slidingWindow
}

// NewITSGateway builds a gateway. A nil client gets the default: 10s timeout
// and TLS verification disabled, which the demographics host requires.
func NewITSGateway(db *gorm.DB, client *http.Client, dataURL, photoURL, apiToken string) *ITSGateway {
	if client == nil {
		client = &http.Client{
			Timeout: itsRequestTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
	return &ITSGateway{
		db:       db,
		client:   client,
		dataURL:  strings.TrimRight(dataURL, "/"),
		photoURL: strings.TrimRight(photoURL, "/"),
		apiToken: apiToken,
		limiter:  newSlidingWindow(itsCallLimit, itsCallWindow),
	}
}

// FetchApplicant retrieves and normalizes one applicant. The photo call is
// independent; its failure leaves Photo nil without failing the fetch.
func (g *ITSGateway) FetchApplicant(ctx context.Context, itsNumber string) (*ApplicantData, error) {
	if !ValidateITSNumber(itsNumber) {
		return nil, fmt.Errorf("invalid ITS number %q: must be 8 digits", itsNumber)
	}

	record, err := g.fetchRecord(ctx, itsNumber)
	if err != nil {
		return nil, err
	}

	data := &ApplicantData{
		ITSNumber: itsNumber,
		FullName:  strings.TrimSpace(record.Fullname),
	}
	if mobile := strings.TrimSpace(record.Mobile); mobile != "" {
		data.Phone = &mobile
	}
	if record.Gender != "" {
		gender := mapGender(record.Gender)
		data.Gender = &gender
	}

	if record.JamiaatID != nil {
		jamiatID, jamaatID, err := g.resolveJamiat(*record.JamiaatID, record.JamaatID)
		if err != nil {
			return nil, err
		}
		data.JamiatID = jamiatID
		data.JamaatID = jamaatID
	}

	if photo, err := g.fetchPhoto(ctx, itsNumber); err != nil {
		log.Printf("Warning: photo fetch for ITS %s failed: %v", itsNumber, err)
	} else {
		data.Photo = photo
	}

	return data, nil
}

func (g *ITSGateway) fetchRecord(ctx context.Context, itsNumber string) (*itsRecord, error) {
	g.limiter.Acquire()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", g.dataURL, itsNumber), nil)
	if err != nil {
		return nil, err
	}
	if g.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiToken)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrITSUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrITSNotFound
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: upstream returned %d", ErrITSUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected ITS response status %d", resp.StatusCode)
	}

	var record itsRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode ITS response: %w", err)
	}
	return &record, nil
}

func (g *ITSGateway) fetchPhoto(ctx context.Context, itsNumber string) ([]byte, error) {
	if g.photoURL == "" {
		return nil, errors.New("photo endpoint not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", g.photoURL, itsNumber), nil)
	if err != nil {
		return nil, err
	}
	if g.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiToken)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo endpoint returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// resolveJamiat maps external jamiat/jamaat codes to internal surrogate
// keys. The jamaat lookup filters by the resolved jamiat because jamaat
// codes repeat across jamiats.
func (g *ITSGateway) resolveJamiat(jamiatCode int, jamaatCode *int) (*int, *int, error) {
	var jamiat models.Jamiat
	if err := g.db.Where("external_code = ?", jamiatCode).First(&jamiat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Warning: unknown jamiat code %d from ITS", jamiatCode)
			return nil, nil, nil
		}
		return nil, nil, err
	}

	jamiatID := jamiat.JamiatID
	if jamaatCode == nil {
		return &jamiatID, nil, nil
	}

	var jamaat models.Jamaat
	err := g.db.Where("external_code = ? AND jamiat_id = ?", *jamaatCode, jamiat.JamiatID).First(&jamaat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Warning: unknown jamaat code %d under jamiat %d", *jamaatCode, jamiat.JamiatID)
			return &jamiatID, nil, nil
		}
		return nil, nil, err
	}

	jamaatID := jamaat.JamaatID
	return &jamiatID, &jamaatID, nil
}

func mapGender(external string) string {
	switch strings.ToUpper(strings.TrimSpace(external)) {
	case "M":
		return "male"
	case "F":
		return "female"
	default:
		return "other"
	}
}
