package content

import (
	"fmt"
	"strings"

	"github.com/unclebandit/framestorm-backend/internal/model"
)

type ViewKind string

const (
	ViewLoading    ViewKind = "loading"
	ViewPreview    ViewKind = "preview"
	ViewEmpty      ViewKind = "empty"
	ViewNoCampaign ViewKind = "no_campaign"
)

// View is the presentation model of the content panel.
type View struct {
	Kind        ViewKind           `json:"kind"`
	ContentType model.CampaignType `json:"content_type,omitempty"`
	Heading     string             `json:"heading"`
	Message     string             `json:"message,omitempty"`
	Video       *VideoPanel        `json:"video,omitempty"`
	Blog        *BlogPanel         `json:"blog,omitempty"`
	Instagram   *InstagramPanel    `json:"instagram,omitempty"`
	Actions     []UploadAction     `json:"actions,omitempty"`
}

type VideoPanel struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	Thumbnail   string `json:"thumbnail"`
	Duration    string `json:"duration"`
	Script      string `json:"script,omitempty"`
}

type BlogPanel struct {
	Title  string         `json:"title"`
	Badges []string       `json:"badges"`
	Blocks []ArticleBlock `json:"blocks"`
}

// ArticleBlock is one heading or paragraph of a rendered blog body.
type ArticleBlock struct {
	Kind string `json:"kind"` // h1, h2, h3 or p
	Text string `json:"text"`
}

type InstagramPanel struct {
	Title      string   `json:"title"`
	ImageURL   string   `json:"image_url"`
	Caption    []string `json:"caption"`
	Hashtags   []string `json:"hashtags"`
	Dimensions string   `json:"dimensions"`
}

type UploadAction struct {
	Platform model.Platform `json:"platform"`
	Label    string         `json:"label"`
}

var platformLabels = map[model.Platform]string{
	model.PlatformYouTube:   "YouTube",
	model.PlatformInstagram: "Instagram",
	model.PlatformLinkedIn:  "LinkedIn",
}

// Render builds the content panel. Generating always wins over any content
// still held, and content whose tag is not contentType is treated as absent.
func Render(contentType model.CampaignType, c Content, isGenerating bool) View {
	if isGenerating {
		return loadingView(contentType)
	}
	if c == nil || c.Type() != contentType {
		return emptyView(contentType)
	}

	v := View{
		Kind:        ViewPreview,
		ContentType: contentType,
		Heading:     fmt.Sprintf("%s Content", titleCase(string(contentType))),
		Actions:     uploadActions(),
	}
	switch p := c.(type) {
	case *Video:
		v.Video = renderVideo(p)
	case *Blog:
		v.Blog = renderBlog(p)
	case *Instagram:
		v.Instagram = renderInstagram(p)
	default:
		return emptyView(contentType)
	}
	return v
}

// EmptyDashboard is shown when the owner has no campaigns at all.
func EmptyDashboard() View {
	return View{
		Kind:    ViewNoCampaign,
		Heading: "No Campaigns",
		Message: "Create your first campaign to get started with content generation.",
	}
}

func loadingView(t model.CampaignType) View {
	return View{
		Kind:        ViewLoading,
		ContentType: t,
		Heading:     fmt.Sprintf("Generating %s content...", t),
		Message:     "This may take a few moments. Please wait while we create your amazing content.",
	}
}

func emptyView(t model.CampaignType) View {
	return View{
		Kind:        ViewEmpty,
		ContentType: t,
		Heading:     fmt.Sprintf("Ready to create %s content", t),
		Message:     "Use the chat interface to describe what you want to create, and our AI will generate amazing content for you.",
	}
}

func renderVideo(v *Video) *VideoPanel {
	return &VideoPanel{
		Title:       v.Title,
		Description: v.Description,
		VideoURL:    v.VideoURL,
		Thumbnail:   v.Thumbnail,
		Duration:    v.Duration,
		Script:      v.Script,
	}
}

func renderBlog(b *Blog) *BlogPanel {
	badges := []string{b.ReadTime, fmt.Sprintf("%d words", b.WordCount)}
	if b.SEOScore > 0 {
		badges = append(badges, fmt.Sprintf("SEO: %d%%", b.SEOScore))
	}
	return &BlogPanel{
		Title:  b.Title,
		Badges: badges,
		Blocks: articleBlocks(b.Body),
	}
}

func renderInstagram(p *Instagram) *InstagramPanel {
	return &InstagramPanel{
		Title:      p.Title,
		ImageURL:   p.ImageURL,
		Caption:    strings.Split(p.Caption, "\n"),
		Hashtags:   append([]string{}, p.Hashtags...),
		Dimensions: p.Dimensions,
	}
}

// articleBlocks splits a markdown-ish body into headings and paragraphs.
// Consecutive plain lines join into one paragraph; blank lines end it.
func articleBlocks(body string) []ArticleBlock {
	blocks := []ArticleBlock{}
	var para []string
	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, ArticleBlock{Kind: "p", Text: strings.Join(para, " ")})
			para = nil
		}
	}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "### "):
			flush()
			blocks = append(blocks, ArticleBlock{Kind: "h3", Text: strings.TrimSpace(line[4:])})
		case strings.HasPrefix(line, "## "):
			flush()
			blocks = append(blocks, ArticleBlock{Kind: "h2", Text: strings.TrimSpace(line[3:])})
		case strings.HasPrefix(line, "# "):
			flush()
			blocks = append(blocks, ArticleBlock{Kind: "h1", Text: strings.TrimSpace(line[2:])})
		default:
			para = append(para, line)
		}
	}
	flush()
	return blocks
}

func uploadActions() []UploadAction {
	actions := make([]UploadAction, 0, len(model.Platforms))
	for _, p := range model.Platforms {
		actions = append(actions, UploadAction{Platform: p, Label: platformLabels[p]})
	}
	return actions
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
