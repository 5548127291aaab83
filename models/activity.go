package models

import "time"

// ActivityKind 는 수집된 활동의 종류(게시글/댓글)를 나타낸다.
type ActivityKind string

const (
	KindPost    ActivityKind = "post"
	KindComment ActivityKind = "comment"
)

// ActivityRecord represents one fetched post or comment.
// 수집 이후에는 값으로만 전달되며 하위 단계에서 수정하지 않는다.
type ActivityRecord struct {
	ID          string       `bson:"id" json:"id"`
	Kind        ActivityKind `bson:"kind" json:"kind"`
	Title       string       `bson:"title,omitempty" json:"title,omitempty"`
	Body        string       `bson:"body" json:"body"`
	Subreddit   string       `bson:"subreddit" json:"subreddit"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
	Score       int          `bson:"score" json:"score"`
	Permalink   string       `bson:"permalink,omitempty" json:"permalink,omitempty"`
	NumComments int          `bson:"num_comments,omitempty" json:"num_comments,omitempty"`
}

// Text 는 분석에 사용하는 본문을 반환한다. 게시글은 제목과 본문을 합친다.
func (r ActivityRecord) Text() string {
	if r.Kind == KindPost && r.Title != "" {
		if r.Body == "" {
			return r.Title
		}
		return r.Title + " " + r.Body
	}
	return r.Body
}

// SplitByKind 는 레코드를 게시글과 댓글로 나눈다. 입력 순서는 유지된다.
func SplitByKind(records []ActivityRecord) (posts, comments []ActivityRecord) {
	for _, r := range records {
		if r.Kind == KindPost {
			posts = append(posts, r)
		} else {
			comments = append(comments, r)
		}
	}
	return posts, comments
}
