// Package content holds the generated-content payloads and their view models.
//
// Content is a closed union: the only implementations are *Video, *Blog and
// *Instagram, and each reports its own tag, so a payload can never carry a
// tag that disagrees with its shape.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/unclebandit/framestorm-backend/internal/model"
)

type Content interface {
	Type() model.CampaignType
	sealed()
}

type Video struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
	Thumbnail   string `json:"thumbnail"`
	Duration    string `json:"duration"`
	Script      string `json:"script"`
}

type Blog struct {
	Title     string `json:"title"`
	Body      string `json:"content"`
	WordCount int    `json:"wordCount"`
	ReadTime  string `json:"readTime"`
	SEOScore  int    `json:"seoScore"`
}

type Instagram struct {
	Title      string   `json:"title"`
	ImageURL   string   `json:"imageUrl"`
	Caption    string   `json:"caption"`
	Hashtags   []string `json:"hashtags"`
	Dimensions string   `json:"dimensions"`
}

func (*Video) Type() model.CampaignType     { return model.CampaignVideo }
func (*Blog) Type() model.CampaignType      { return model.CampaignBlog }
func (*Instagram) Type() model.CampaignType { return model.CampaignInstagram }

func (*Video) sealed()     {}
func (*Blog) sealed()      {}
func (*Instagram) sealed() {}

// NewVideo validates v and returns it as a video payload.
func NewVideo(v Video) (*Video, error) {
	if strings.TrimSpace(v.Title) == "" {
		return nil, errors.New("video: title is required")
	}
	return &v, nil
}

// NewBlog validates b and returns it as a blog payload.
func NewBlog(b Blog) (*Blog, error) {
	switch {
	case strings.TrimSpace(b.Title) == "":
		return nil, errors.New("blog: title is required")
	case b.WordCount <= 0:
		return nil, fmt.Errorf("blog: word count must be positive, got %d", b.WordCount)
	case strings.TrimSpace(b.ReadTime) == "":
		return nil, errors.New("blog: read time is required")
	case b.SEOScore < 0 || b.SEOScore > 100:
		return nil, fmt.Errorf("blog: seo score %d outside 0-100", b.SEOScore)
	}
	return &b, nil
}

// NewInstagram validates p and returns it as an instagram payload.
func NewInstagram(p Instagram) (*Instagram, error) {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return nil, errors.New("instagram: title is required")
	case strings.TrimSpace(p.Dimensions) == "":
		return nil, errors.New("instagram: dimensions are required")
	}
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	} else {
		p.Hashtags = append([]string(nil), p.Hashtags...)
	}
	return &p, nil
}

func (v *Video) MarshalJSON() ([]byte, error) {
	type alias Video
	return json.Marshal(struct {
		Type model.CampaignType `json:"type"`
		*alias
	}{v.Type(), (*alias)(v)})
}

func (b *Blog) MarshalJSON() ([]byte, error) {
	type alias Blog
	return json.Marshal(struct {
		Type model.CampaignType `json:"type"`
		*alias
	}{b.Type(), (*alias)(b)})
}

func (p *Instagram) MarshalJSON() ([]byte, error) {
	type alias Instagram
	return json.Marshal(struct {
		Type model.CampaignType `json:"type"`
		*alias
	}{p.Type(), (*alias)(p)})
}

// ErrTypeMismatch is returned by Decode when the payload tag differs from the
// expected campaign type.
var ErrTypeMismatch = errors.New("content type mismatch")

// Decode parses a JSON payload for the expected type. A "type" field, when
// present, must equal want.
func Decode(want model.CampaignType, data []byte) (Content, error) {
	var head struct {
		Type model.CampaignType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode %s content: %w", want, err)
	}
	if head.Type != "" && head.Type != want {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, want, head.Type)
	}

	switch want {
	case model.CampaignVideo:
		var v Video
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode video content: %w", err)
		}
		video, err := NewVideo(v)
		if err != nil {
			return nil, err
		}
		return video, nil
	case model.CampaignBlog:
		var b Blog
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("decode blog content: %w", err)
		}
		blog, err := NewBlog(b)
		if err != nil {
			return nil, err
		}
		return blog, nil
	case model.CampaignInstagram:
		var p Instagram
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode instagram content: %w", err)
		}
		post, err := NewInstagram(p)
		if err != nil {
			return nil, err
		}
		return post, nil
	}
	return nil, fmt.Errorf("decode: unknown campaign type %q", want)
}

