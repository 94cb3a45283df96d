package generator

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/unclebandit/framestorm-backend/internal/content"
	"github.com/unclebandit/framestorm-backend/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog holds helper prompts, model instructions and placeholder payloads
// for each campaign type.
type Catalog struct {
	Video struct {
		Entry       `yaml:",inline"`
		Placeholder struct {
			Title       string `yaml:"title"`
			Description string `yaml:"description"`
			VideoURL    string `yaml:"video_url"`
			Thumbnail   string `yaml:"thumbnail"`
			Duration    string `yaml:"duration"`
			Script      string `yaml:"script"`
		} `yaml:"placeholder"`
	} `yaml:"video"`

	Blog struct {
		Entry       `yaml:",inline"`
		Placeholder struct {
			Title     string `yaml:"title"`
			Body      string `yaml:"body"`
			WordCount int    `yaml:"word_count"`
			ReadTime  string `yaml:"read_time"`
			SEOScore  int    `yaml:"seo_score"`
		} `yaml:"placeholder"`
	} `yaml:"blog"`

	Instagram struct {
		Entry       `yaml:",inline"`
		Placeholder struct {
			Title      string   `yaml:"title"`
			ImageURL   string   `yaml:"image_url"`
			Caption    string   `yaml:"caption"`
			Hashtags   []string `yaml:"hashtags"`
			Dimensions string   `yaml:"dimensions"`
		} `yaml:"placeholder"`
	} `yaml:"instagram"`
}

type Entry struct {
	Helpers     []string `yaml:"helpers"`
	Instruction string   `yaml:"instruction"`
}

// LoadCatalog parses a catalog document.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}
	return &c, nil
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) entry(t model.CampaignType) (Entry, error) {
	switch t {
	case model.CampaignVideo:
		return c.Video.Entry, nil
	case model.CampaignBlog:
		return c.Blog.Entry, nil
	case model.CampaignInstagram:
		return c.Instagram.Entry, nil
	}
	return Entry{}, fmt.Errorf("unknown campaign type %q", t)
}

// Helpers returns the suggested prompts for t.
func (c *Catalog) Helpers(t model.CampaignType) ([]string, error) {
	e, err := c.entry(t)
	if err != nil {
		return nil, err
	}
	return append([]string{}, e.Helpers...), nil
}

// Instruction returns the model instruction for t.
func (c *Catalog) Instruction(t model.CampaignType) (string, error) {
	e, err := c.entry(t)
	if err != nil {
		return "", err
	}
	return e.Instruction, nil
}

// Placeholder builds the canned payload for t with the request's values
// substituted.
func (c *Catalog) Placeholder(req Request) (content.Content, error) {
	data := map[string]string{
		"prompt":   req.Prompt,
		"campaign": req.Campaign.Title,
		"audience": req.Campaign.TargetAudience,
	}

	switch req.Type {
	case model.CampaignVideo:
		p := c.Video.Placeholder
		v, err := content.NewVideo(content.Video{
			Title:       RenderTemplate(p.Title, data),
			Description: RenderTemplate(p.Description, data),
			VideoURL:    p.VideoURL,
			Thumbnail:   p.Thumbnail,
			Duration:    p.Duration,
			Script:      RenderTemplate(p.Script, data),
		})
		if err != nil {
			return nil, err
		}
		return v, nil
	case model.CampaignBlog:
		p := c.Blog.Placeholder
		b, err := content.NewBlog(content.Blog{
			Title:     RenderTemplate(p.Title, data),
			Body:      RenderTemplate(p.Body, data),
			WordCount: p.WordCount,
			ReadTime:  p.ReadTime,
			SEOScore:  p.SEOScore,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	case model.CampaignInstagram:
		p := c.Instagram.Placeholder
		post, err := content.NewInstagram(content.Instagram{
			Title:      RenderTemplate(p.Title, data),
			ImageURL:   p.ImageURL,
			Caption:    RenderTemplate(p.Caption, data),
			Hashtags:   p.Hashtags,
			Dimensions: p.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		return post, nil
	}
	return nil, fmt.Errorf("unknown campaign type %q", req.Type)
}
