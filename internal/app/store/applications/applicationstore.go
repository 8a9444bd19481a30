// Package applicationstore reads and writes job application records.
//
// Every read of records is scoped to one owner: there is no query in this
// package that can return another user's records. Totals is the one
// cross-owner query and it returns counts only.
package applicationstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/applytrack/internal/app/system/htmlsanitize"
	"github.com/dalemusser/applytrack/internal/app/system/inputval"
	"github.com/dalemusser/applytrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrInvalid is wrapped by every validation failure from Create.
var ErrInvalid = errors.New("invalid application")

// Field limits enforced by Create.
const (
	MaxShortField       = 200
	MaxDescriptionField = 10000
)

// RecentLimit is the number of records shown in the dashboard's recent list.
const RecentLimit = 5

type Store struct {
	c   *mongo.Collection
	log *zap.Logger
}

// New returns a Store over the "applications" collection. A nil logger is
// replaced with a no-op logger.
func New(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{c: db.Collection("applications"), log: logger}
}

// Create validates a, fills defaults and inserts it. The returned record
// carries the assigned ID and CreatedAt.
//
// Defaults: Status In Progress, CompanyType Other, AppliedDate today (UTC).
// Free-text fields are stripped of markup.
func (s *Store) Create(ctx context.Context, a models.Application) (models.Application, error) {
	if a.UserID.IsZero() {
		return models.Application{}, fmt.Errorf("%w: owner is required", ErrInvalid)
	}

	now := time.Now().UTC()
	a = prepare(a, now)

	if err := validate(a); err != nil {
		return models.Application{}, err
	}

	a.ID = primitive.NewObjectID()
	a.CreatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Application{}, fmt.Errorf("insert application: %w", err)
	}
	return a, nil
}

// prepare strips markup from free text and fills defaults.
func prepare(a models.Application, now time.Time) models.Application {
	a.JobTitle = htmlsanitize.StripTags(a.JobTitle)
	a.Company = htmlsanitize.StripTags(a.Company)
	a.JobDescription = htmlsanitize.StripTags(a.JobDescription)
	a.TechStack = htmlsanitize.StripTags(a.TechStack)
	a.CollegeName = htmlsanitize.StripTags(a.CollegeName)
	a.ContactEmail = strings.TrimSpace(a.ContactEmail)
	a.ContactPhone = htmlsanitize.StripTags(a.ContactPhone)
	a.ApplicationLink = strings.TrimSpace(a.ApplicationLink)

	if a.Status == "" {
		a.Status = models.DefaultApplicationStatus
	}
	if a.CompanyType == "" {
		a.CompanyType = models.DefaultCompanyType
	}
	if a.AppliedDate.IsZero() {
		a.AppliedDate = now.Truncate(24 * time.Hour)
	}
	return a
}

// CreateMany runs the Create rules over every record and inserts them in one
// batch. Nothing is inserted when any record is invalid; the error names the
// 1-based position of the first bad record.
func (s *Store) CreateMany(ctx context.Context, owner primitive.ObjectID, apps []models.Application) ([]models.Application, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalid)
	}
	if len(apps) == 0 {
		return []models.Application{}, nil
	}

	now := time.Now().UTC()
	out := make([]models.Application, 0, len(apps))
	docs := make([]interface{}, 0, len(apps))
	for i, a := range apps {
		a.UserID = owner
		a = prepare(a, now)
		if err := validate(a); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		a.ID = primitive.NewObjectID()
		a.CreatedAt = now
		out = append(out, a)
		docs = append(docs, a)
	}

	if _, err := s.c.InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("insert applications: %w", err)
	}
	return out, nil
}

func validate(a models.Application) error {
	switch {
	case a.JobTitle == "":
		return fmt.Errorf("%w: job title is required", ErrInvalid)
	case a.Company == "":
		return fmt.Errorf("%w: company is required", ErrInvalid)
	case len(a.JobTitle) > MaxShortField:
		return fmt.Errorf("%w: job title must be at most %d characters", ErrInvalid, MaxShortField)
	case len(a.Company) > MaxShortField:
		return fmt.Errorf("%w: company must be at most %d characters", ErrInvalid, MaxShortField)
	case len(a.JobDescription) > MaxDescriptionField:
		return fmt.Errorf("%w: job description must be at most %d characters", ErrInvalid, MaxDescriptionField)
	case !models.IsValidStatus(a.Status):
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, a.Status)
	case !models.IsValidCompanyType(a.CompanyType):
		return fmt.Errorf("%w: unknown company type %q", ErrInvalid, a.CompanyType)
	case a.ContactEmail != "" && !inputval.IsValidEmail(a.ContactEmail):
		return fmt.Errorf("%w: contact email is not a valid address", ErrInvalid)
	case a.ApplicationLink != "" && !inputval.IsValidHTTPURL(a.ApplicationLink):
		return fmt.Errorf("%w: application link must be an http(s) URL", ErrInvalid)
	case a.LastDateToApply != nil && a.LastDateToApply.IsZero():
		return fmt.Errorf("%w: last date to apply is empty", ErrInvalid)
	}
	return nil
}

// ListOptions narrows ListByOwner.
type ListOptions struct {
	Limit  int64  // 0 means no limit
	Skip   int64  // rows to skip, for paged lists
	Status string // canonical status, "" for all
}

// ListResult is the outcome of ListByOwner.
type ListResult struct {
	Items   []models.Application
	Skipped int // stored documents that failed Coerce
}

// ListByOwner returns the owner's records, newest applied date first.
// Documents that cannot be coerced are skipped, logged and counted.
//
// Skip and Limit count stored documents, so a page that contains unreadable
// documents comes back short by res.Skipped.
func (s *Store) ListByOwner(ctx context.Context, owner primitive.ObjectID, opt ListOptions) (ListResult, error) {
	filter := bson.M{"user_id": owner}
	if opt.Status != "" {
		for k, v := range statusFilter(opt.Status) {
			filter[k] = v
		}
	}

	fo := options.Find().SetSort(bson.D{{Key: "applied_date", Value: -1}, {Key: "_id", Value: -1}})
	if opt.Limit > 0 {
		fo.SetLimit(opt.Limit)
	}
	if opt.Skip > 0 {
		fo.SetSkip(opt.Skip)
	}

	cur, err := s.c.Find(ctx, filter, fo)
	if err != nil {
		return ListResult{}, fmt.Errorf("find applications: %w", err)
	}
	defer cur.Close(ctx)

	res := ListResult{Items: []models.Application{}}
	for cur.Next(ctx) {
		a, err := Coerce(cur.Current)
		if err != nil {
			res.Skipped++
			s.log.Warn("skipping unreadable application",
				zap.String("user_id", owner.Hex()),
				zap.Error(err))
			continue
		}
		res.Items = append(res.Items, a)
	}
	if err := cur.Err(); err != nil {
		return res, fmt.Errorf("iterate applications: %w", err)
	}
	return res, nil
}

// statusFilter matches every stored spelling that Coerce reads as the
// canonical status canon: any case, with " ", "_" or "-" between letters and
// surrounding space. For the default status it also matches a missing or
// blank value.
func statusFilter(canon string) bson.M {
	letters := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(canon))

	var b strings.Builder
	b.WriteString(`^\s*[ _-]*`)
	for i, r := range letters {
		if i > 0 {
			b.WriteString(`[ _-]*`)
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	b.WriteString(`[ _-]*\s*$`)

	match := bson.M{"status": primitive.Regex{Pattern: b.String(), Options: "i"}}
	if canon != models.DefaultApplicationStatus {
		return match
	}
	return bson.M{"$or": bson.A{
		match,
		bson.M{"status": nil},
		bson.M{"status": primitive.Regex{Pattern: `^\s*$`}},
	}}
}

// GetByOwner loads one record. It returns mongo.ErrNoDocuments when the
// record does not exist or belongs to someone else.
func (s *Store) GetByOwner(ctx context.Context, owner, id primitive.ObjectID) (models.Application, error) {
	raw, err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": owner}).Raw()
	if err != nil {
		return models.Application{}, err
	}
	return Coerce(raw)
}

// Totals counts all stored records per status value, across every owner.
// It feeds the operational gauges; views never call it.
func (s *Store) Totals(ctx context.Context) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate totals: %w", err)
	}
	defer cur.Close(ctx)

	out := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			Status any   `bson:"_id"`
			N      int64 `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode totals: %w", err)
		}
		key, _ := row.Status.(string)
		if canon, ok := models.CanonicalStatus(key); ok {
			key = canon
		} else {
			key = "other"
		}
		out[key] += row.N
	}
	return out, cur.Err()
}
