package repositories

import (
	"context"
	"math"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reddit-persona/models"
)

type ArtifactRepository struct {
	col *mongo.Collection
}

func NewArtifactRepository(db *mongo.Database) *ArtifactRepository {
	return &ArtifactRepository{col: db.Collection("artifacts")}
}

// UpsertByArtifactID upserts the index record identified by artifact_id.
func (r *ArtifactRepository) UpsertByArtifactID(ctx context.Context, a *models.ArtifactMeta) (*mongo.UpdateResult, error) {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	filter := bson.M{"artifact_id": a.ArtifactID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"created_at": a.CreatedAt,
		},
		"$set": bson.M{
			"updated_at":     a.UpdatedAt,
			"artifact_id":    a.ArtifactID,
			"generation_id":  a.GenerationID,
			"username":       a.Username,
			"persona_file":   a.PersonaFile,
			"data_file":      a.DataFile,
			"posts_count":    a.PostsCount,
			"comments_count": a.CommentsCount,
			"persona_method": a.PersonaMethod,
			"persona_model":  a.PersonaModel,
			"summary":        a.Summary,
			"mbti_type":      a.MBTIType,
			"mirror_url":     a.MirrorURL,
			"generated_at":   a.GeneratedAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	return r.col.UpdateOne(ctx, filter, update, opts)
}

// FindByArtifactID returns an index record by artifact_id.
func (r *ArtifactRepository) FindByArtifactID(ctx context.Context, id string) (*models.ArtifactMeta, error) {
	var a models.ArtifactMeta
	if err := r.col.FindOne(ctx, bson.M{"artifact_id": id}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

type ListArtifactsOptions struct {
	Page     int
	PageSize int
	Username string
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize 는 page/page_size 기본값을 채우고 (Page-1)*PageSize 가 int 범위를 넘지 않도록 Page 를 제한한다.
func (o ListArtifactsOptions) Normalize() ListArtifactsOptions {
	if o.PageSize <= 0 || o.PageSize > maxPageSize {
		o.PageSize = defaultPageSize
	}
	if o.Page <= 0 {
		o.Page = 1
	}
	if maxPage := math.MaxInt/o.PageSize - 1; o.Page > maxPage {
		o.Page = maxPage
	}
	return o
}

// Skip is the number of records before the page. Call it on normalized options.
func (o ListArtifactsOptions) Skip() int {
	return (o.Page - 1) * o.PageSize
}

// List returns index records sorted by generated_at desc.
func (r *ArtifactRepository) List(ctx context.Context, opt ListArtifactsOptions) ([]models.ArtifactMeta, int64, error) {
	filter := bson.M{}
	if opt.Username != "" {
		filter["username"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(opt.Username) + "$", Options: "i"}
	}

	opt = opt.Normalize()
	skip := int64(opt.Skip())
	limit := int64(opt.PageSize)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{
		{Key: "generated_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var results []models.ArtifactMeta
	for cur.Next(ctx) {
		var a models.ArtifactMeta
		if err := cur.Decode(&a); err != nil {
			return nil, 0, err
		}
		results = append(results, a)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// Save records a completed generation in the index.
func (r *ArtifactRepository) Save(ctx context.Context, a *models.ArtifactMeta) error {
	_, err := r.UpsertByArtifactID(ctx, a)
	return err
}
