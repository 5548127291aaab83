package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ArtifactMeta describes one completed generation's persisted files.
// Collection: artifacts
type ArtifactMeta struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ArtifactID    string             `bson:"artifact_id" json:"id"`
	GenerationID  string             `bson:"generation_id,omitempty" json:"generation_id,omitempty"`
	Username      string             `bson:"username" json:"username"`
	PersonaFile   string             `bson:"persona_file" json:"persona_file"`
	DataFile      string             `bson:"data_file" json:"data_file"`
	PostsCount    int                `bson:"posts_count" json:"posts_count"`
	CommentsCount int                `bson:"comments_count" json:"comments_count"`
	PersonaMethod string             `bson:"persona_method,omitempty" json:"persona_method,omitempty"`
	PersonaModel  string             `bson:"persona_model,omitempty" json:"persona_model,omitempty"`
	Summary       string             `bson:"summary,omitempty" json:"summary,omitempty"`
	MBTIType      string             `bson:"mbti_type,omitempty" json:"mbti_type,omitempty"`
	MirrorURL     string             `bson:"mirror_url,omitempty" json:"mirror_url,omitempty"`
	GeneratedAt   time.Time          `bson:"generated_at" json:"generated_at"`
	CreatedAt     time.Time          `bson:"created_at" json:"-"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"-"`
}
