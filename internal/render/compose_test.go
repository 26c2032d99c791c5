package render

import (
	"errors"
	"testing"

	"github.com/backmassage/stillcap/internal/fonts"
	"github.com/backmassage/stillcap/internal/title"
)

func phrase(t *testing.T, raw string) title.Phrase {
	t.Helper()
	p, err := title.NewTokenizer(title.DefaultAbbreviations).Tokenize(raw)
	if err != nil {
		t.Fatal(err)
	}
	corrected, _ := title.NewChecker(title.DefaultSmallWords).Check(p)
	return corrected
}

func TestCompose(t *testing.T) {
	font := fonts.Descriptor{Path: "/fonts/Lato.ttf", Name: "Lato", Format: fonts.FormatTTF}
	req, err := Compose(phrase(t, "the-matrix-reloaded"), font)
	if err != nil {
		t.Fatal(err)
	}
	if req.Text != "The Matrix Reloaded" {
		t.Errorf("Text = %q", req.Text)
	}
	if req.Font != font {
		t.Errorf("Font = %+v, want pass-through descriptor", req.Font)
	}
	if req.MaxWidthFrac != 0.6 || req.FontSizeFrac != 0.12 || req.MinFontSize != 60 {
		t.Errorf("layout hints = %+v", req)
	}
}

func TestCompose_NoFont(t *testing.T) {
	_, err := Compose(phrase(t, "alien"), fonts.Descriptor{})
	if !errors.Is(err, fonts.ErrNoFontSelected) {
		t.Errorf("err = %v, want ErrNoFontSelected", err)
	}
}

func TestCompose_EmptyPhraseIsNotAnError(t *testing.T) {
	font := fonts.Descriptor{Path: "/fonts/Lato.ttf", Name: "Lato"}
	req, err := Compose(title.Phrase{}, font)
	if err != nil {
		t.Fatal(err)
	}
	if req.Text != "" {
		t.Errorf("Text = %q, want empty", req.Text)
	}
}

func TestFontSize(t *testing.T) {
	req := Request{FontSizeFrac: 0.12, MinFontSize: 60}
	if got := fontSize(req, 1080); got != 129.6 {
		t.Errorf("fontSize(1080) = %v, want 129.6", got)
	}
	if got := fontSize(req, 200); got != 60 {
		t.Errorf("fontSize(200) = %v, want floor of 60", got)
	}
}
