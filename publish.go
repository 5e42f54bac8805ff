package litpipe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alnah/go-litpipe/internal/pipeline"
	"github.com/alnah/go-litpipe/internal/wordpress"
	"github.com/alnah/go-litpipe/internal/yamlutil"
)

// PublishAction selects what the publish pipeline does on the blog.
type PublishAction string

// Publish actions.
const (
	ActionCreate PublishAction = "create" // new post
	ActionUpdate PublishAction = "update" // replace an existing post
	ActionPage   PublishAction = "page"   // new page
)

// ParsePublishAction validates an action name. An empty name means create.
func ParsePublishAction(s string) (PublishAction, error) {
	switch a := PublishAction(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return ActionCreate, nil
	case ActionCreate, ActionUpdate, ActionPage:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q (want create, update or page)", ErrUnknownAction, s)
}

// Publisher is the blog client the publish pipeline delegates to.
type Publisher interface {
	CreatePost(ctx context.Context, post wordpress.Post) (wordpress.Item, error)
	UpdatePost(ctx context.Context, id int, post wordpress.Post) (wordpress.Item, error)
	CreatePage(ctx context.Context, page wordpress.Post) (wordpress.Item, error)
}

var _ Publisher = (*wordpress.Client)(nil)

// PublishJob describes one blog publication.
type PublishJob struct {
	Job
	Action     PublishAction // "" = ActionCreate
	ItemID     int    // required for ActionUpdate, rejected otherwise
	Title      string // required
	Publish    bool   // false = draft
	Encoding   string // encoding of title and rendered body ("" = UTF-8)
	Shortcode  pipeline.ShortcodeOptions
	Categories []int
	Tags       []int
	Meta       map[string]any // passed through to the blog untouched
}

// PublishResult identifies the created or updated item.
type PublishResult struct {
	ID     int
	Link   string
	Status string
}

// PublishPipeline renders a literate document and posts it to a blog.
type PublishPipeline struct {
	Render    Renderer
	Converter pipeline.HTMLConverter // fragments without highlighting
	Client    Publisher
	Logger    *slog.Logger
}

// NewPublishPipeline creates a PublishPipeline posting through client.
func NewPublishPipeline(render Renderer, client Publisher, logger *slog.Logger) *PublishPipeline {
	return &PublishPipeline{
		Render:    render,
		Converter: pipeline.NewGoldmarkConverter(pipeline.MarkdownOptions{RawHTML: true}),
		Client:    client,
		Logger:    logger,
	}
}

// Validate checks job preconditions. It is called before anything is
// rendered or sent.
func (j PublishJob) Validate() error {
	if j.Input == "" {
		return ErrEmptyInput
	}
	switch j.Action {
	case ActionUpdate:
		if j.ItemID <= 0 {
			return ErrMissingItemID
		}
	case ActionCreate, ActionPage, "":
		if j.ItemID != 0 {
			return fmt.Errorf("%w: got %d for %s", ErrUnexpectedItemID, j.ItemID, j.Action)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, j.Action)
	}
	if strings.TrimSpace(j.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Publish renders job.Input, converts it to an HTML fragment, rewrites code
// blocks, transcodes title and body to UTF-8 and sends the result.
// Render errors are returned unchanged.
func (p *PublishPipeline) Publish(ctx context.Context, job PublishJob) (PublishResult, error) {
	if err := job.Validate(); err != nil {
		return PublishResult{}, err
	}
	if p.Client == nil {
		return PublishResult{}, fmt.Errorf("%w: %v", ErrPublish, wordpress.ErrMissingEndpoint)
	}
	logger := job.logger(p.Logger)

	rendered, err := p.render().Render(ctx, RenderRequest{Input: job.Input, Output: job.Output, Encoding: job.Encoding})
	if err != nil {
		return PublishResult{}, err
	}
	markdown, err := renderedText(rendered)
	if err != nil {
		return PublishResult{}, err
	}
	if _, body, ok := yamlutil.SplitFrontMatter(markdown); ok {
		markdown = body
	}

	fragment, err := p.converter().ToHTML(ctx, markdown)
	if err != nil {
		return PublishResult{}, err
	}
	fragment = pipeline.RewriteShortcodes(fragment, job.Shortcode)

	title, err := pipeline.ToUTF8(job.Title, job.Encoding)
	if err != nil {
		return PublishResult{}, err
	}
	content, err := pipeline.ToUTF8(fragment, job.Encoding)
	if err != nil {
		return PublishResult{}, err
	}

	post := wordpress.Post{
		Title:      title,
		Content:    content,
		Status:     wordpress.StatusDraft,
		Categories: job.Categories,
		Tags:       job.Tags,
		Meta:       job.Meta,
	}
	if job.Publish {
		post.Status = wordpress.StatusPublish
	}

	logger.Info("publishing", "action", string(job.Action), "status", post.Status, "item_id", job.ItemID)

	var item wordpress.Item
	switch job.Action {
	case ActionUpdate:
		item, err = p.Client.UpdatePost(ctx, job.ItemID, post)
	case ActionPage:
		item, err = p.Client.CreatePage(ctx, post)
	default:
		item, err = p.Client.CreatePost(ctx, post)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return PublishResult{}, ctxErr
		}
		return PublishResult{}, fmt.Errorf("%w: %w", ErrPublish, err)
	}

	logger.Info("published", "id", item.ID, "link", item.Link)
	return PublishResult{ID: item.ID, Link: item.Link, Status: item.Status}, nil
}

func (p *PublishPipeline) render() Renderer {
	if p.Render == nil {
		return Passthrough{}
	}
	return p.Render
}

func (p *PublishPipeline) converter() pipeline.HTMLConverter {
	if p.Converter == nil {
		return pipeline.NewGoldmarkConverter(pipeline.MarkdownOptions{RawHTML: true})
	}
	return p.Converter
}
