// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// StyleSet is the style-panel state of one template being edited.
// ContentSize holds a size token (xxs…xl), not pixels.
type StyleSet struct {
	TitleFont   string `json:"titleFont,omitempty" yaml:"titleFont" bson:"titleFont,omitempty"`
	TitleSize   string `json:"titleSize,omitempty" yaml:"titleSize" bson:"titleSize,omitempty"`
	ContentFont string `json:"contentFont,omitempty" yaml:"contentFont" bson:"contentFont,omitempty"`
	ContentSize string `json:"contentSize,omitempty" yaml:"contentSize" bson:"contentSize,omitempty"`
	TextColor   string `json:"textColor,omitempty" yaml:"textColor" bson:"textColor,omitempty"`
	Alignment   string `json:"alignment,omitempty" yaml:"alignment" bson:"alignment,omitempty"`
	IsBold      bool   `json:"isBold" yaml:"isBold" bson:"isBold"`
	IsItalic    bool   `json:"isItalic" yaml:"isItalic" bson:"isItalic"`
	IsUnderline bool   `json:"isUnderline" yaml:"isUnderline" bson:"isUnderline"`
}

// StylePatch is a partial StyleSet. Nil fields are left untouched when the
// patch is applied.
type StylePatch struct {
	ContentFont *string `json:"contentFont,omitempty"`
	ContentSize *string `json:"contentSize,omitempty"`
	TextColor   *string `json:"textColor,omitempty"`
	Alignment   *string `json:"alignment,omitempty"`
	IsBold      *bool   `json:"isBold,omitempty"`
	IsItalic    *bool   `json:"isItalic,omitempty"`
	IsUnderline *bool   `json:"isUnderline,omitempty"`
}

// Apply returns a copy of s with every non-nil patch field written over it.
func (p StylePatch) Apply(s StyleSet) StyleSet {
	if p.ContentFont != nil {
		s.ContentFont = *p.ContentFont
	}
	if p.ContentSize != nil {
		s.ContentSize = *p.ContentSize
	}
	if p.TextColor != nil {
		s.TextColor = *p.TextColor
	}
	if p.Alignment != nil {
		s.Alignment = *p.Alignment
	}
	if p.IsBold != nil {
		s.IsBold = *p.IsBold
	}
	if p.IsItalic != nil {
		s.IsItalic = *p.IsItalic
	}
	if p.IsUnderline != nil {
		s.IsUnderline = *p.IsUnderline
	}
	return s
}

// IsEmpty reports whether the patch changes nothing.
func (p StylePatch) IsEmpty() bool {
	return p == StylePatch{}
}
