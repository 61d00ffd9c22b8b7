// Package replies holds the canned chat replies and builds LINE messages
// from them. The literals live in an embedded YAML resource.
package replies

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"gopkg.in/yaml.v3"

	"github.com/shirasaka-flower/line-gateway/internal/lineutil"
)

//go:embed replies.yaml
var defaultTemplates []byte

// Templates is the decoded reply resource.
type Templates struct {
	FAQ         string  `yaml:"faq"`
	ChatSupport string  `yaml:"chat_support"`
	Catalog     Catalog `yaml:"catalog"`
}

// Catalog describes the product carousel.
type Catalog struct {
	AltText     string        `yaml:"alt_text"`
	ButtonLabel string        `yaml:"button_label"`
	Style       CatalogStyle  `yaml:"style"`
	Items       []CatalogItem `yaml:"items"`
}

// CatalogStyle holds the flex styling shared by every bubble.
type CatalogStyle struct {
	HeroSize         string `yaml:"hero_size"`
	HeroAspectRatio  string `yaml:"hero_aspect_ratio"`
	HeroAspectMode   string `yaml:"hero_aspect_mode"`
	PriceColor       string `yaml:"price_color"`
	DescriptionColor string `yaml:"description_color"`
	ButtonColor      string `yaml:"button_color"`
}

// CatalogItem is one bubble.
type CatalogItem struct {
	Title       string `yaml:"title"`
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
}

// Load decodes the embedded templates.
func Load() (*Templates, error) {
	return Parse(defaultTemplates)
}

// Parse decodes templates from YAML and fills unset styling with the shop
// palette.
func Parse(data []byte) (*Templates, error) {
	var t Templates
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode reply templates: %w", err)
	}
	t.Catalog.Style.applyDefaults()
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("reply templates: %w", err)
	}
	return &t, nil
}

func (s *CatalogStyle) applyDefaults() {
	setDefault(&s.HeroSize, "full")
	setDefault(&s.HeroAspectRatio, "20:13")
	setDefault(&s.HeroAspectMode, "cover")
	setDefault(&s.PriceColor, lineutil.ColorPrice)
	setDefault(&s.DescriptionColor, lineutil.ColorLabel)
	setDefault(&s.ButtonColor, lineutil.ColorButtonPrimary)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func (t *Templates) validate() error {
	var errs []error
	if t.FAQ == "" {
		errs = append(errs, errors.New("faq is empty"))
	}
	if t.ChatSupport == "" {
		errs = append(errs, errors.New("chat_support is empty"))
	}
	if t.Catalog.AltText == "" {
		errs = append(errs, errors.New("catalog.alt_text is empty"))
	}
	if t.Catalog.ButtonLabel == "" {
		errs = append(errs, errors.New("catalog.button_label is empty"))
	}
	switch n := len(t.Catalog.Items); {
	case n == 0:
		errs = append(errs, errors.New("catalog has no items"))
	case n > lineutil.MaxFlexCarouselBubbleCount:
		errs = append(errs, fmt.Errorf("catalog has %d items, max %d", n, lineutil.MaxFlexCarouselBubbleCount))
	}
	for i, item := range t.Catalog.Items {
		if item.Title == "" || item.Price == "" || item.Description == "" || item.ImageURL == "" {
			errs = append(errs, fmt.Errorf("catalog item %d has empty fields", i))
		}
	}
	return errors.Join(errs...)
}

// FAQMessage returns the FAQ text reply.
func (t *Templates) FAQMessage() messaging_api.MessageInterface {
	return lineutil.NewTextMessage(t.FAQ)
}

// ChatSupportMessage returns the chat support acknowledgement.
func (t *Templates) ChatSupportMessage() messaging_api.MessageInterface {
	return lineutil.NewTextMessage(t.ChatSupport)
}

// CatalogMessage builds the product carousel; every button opens orderURL.
func (t *Templates) CatalogMessage(orderURL string) *messaging_api.FlexMessage {
	style := t.Catalog.Style
	bubbles := make([]messaging_api.FlexBubble, 0, len(t.Catalog.Items))

	for _, item := range t.Catalog.Items {
		hero := lineutil.NewFlexImage(item.ImageURL).
			WithSize(style.HeroSize).
			WithAspectRatio(style.HeroAspectRatio).
			WithAspectMode(style.HeroAspectMode)

		body := lineutil.NewFlexBox("vertical",
			lineutil.NewFlexText(item.Title).WithWeight("bold").WithSize("xl").FlexText,
			lineutil.NewFlexText(item.Price).WithSize("md").WithColor(style.PriceColor).WithMargin("sm").FlexText,
			lineutil.NewFlexText(item.Description).WithSize("sm").WithColor(style.DescriptionColor).WithWrap(true).WithMargin("md").FlexText,
		)

		footer := lineutil.NewFlexBox("vertical",
			lineutil.NewFlexButton(lineutil.NewURIAction(t.Catalog.ButtonLabel, orderURL)).
				WithStyle("primary").
				WithColor(style.ButtonColor).FlexButton,
		)

		bubbles = append(bubbles, *lineutil.NewFlexBubble(nil, hero.FlexImage, body, footer).FlexBubble)
	}

	return lineutil.NewFlexMessage(t.Catalog.AltText, lineutil.NewFlexCarousel(bubbles))
}
