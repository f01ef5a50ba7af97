// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/toolhub-vn/toolhub/internal/model"
)

type seedCategory struct {
	slug  string
	names map[string]string
}

type seedTool struct {
	slug         string
	categorySlug string
	componentKey string
	names        map[string]string
	descriptions map[string]string
	contents     map[string]string
}

var seedCategories = []seedCategory{
	{
		slug: "developer-tools",
		names: map[string]string{
			"en": "Developer Tools", "vi": "Công cụ lập trình", "ja": "開発者ツール",
			"ko": "개발자 도구", "id": "Alat Pengembang", "es": "Herramientas para desarrolladores",
			"pt": "Ferramentas de desenvolvedor", "de": "Entwicklerwerkzeuge",
			"fr": "Outils de développement", "hi": "डेवलपर उपकरण",
		},
	},
	{
		slug: "seo-tools",
		names: map[string]string{
			"en": "SEO Tools", "vi": "Công cụ SEO", "ja": "SEOツール",
			"ko": "SEO 도구", "id": "Alat SEO", "es": "Herramientas SEO",
			"pt": "Ferramentas de SEO", "de": "SEO-Werkzeuge",
			"fr": "Outils SEO", "hi": "SEO उपकरण",
		},
	},
	{
		slug: "security-tools",
		names: map[string]string{
			"en": "Security Tools", "vi": "Công cụ bảo mật", "ja": "セキュリティツール",
			"ko": "보안 도구", "id": "Alat Keamanan", "es": "Herramientas de seguridad",
			"pt": "Ferramentas de segurança", "de": "Sicherheitswerkzeuge",
			"fr": "Outils de sécurité", "hi": "सुरक्षा उपकरण",
		},
	},
}

var seedTools = []seedTool{
	{
		slug:         "json-formatter",
		categorySlug: "developer-tools",
		componentKey: "json-formatter-logic",
		names: map[string]string{
			"en": "JSON Formatter", "vi": "Định dạng JSON", "ja": "JSONフォーマッター",
			"ko": "JSON 포매터", "id": "Pemformat JSON", "es": "Formateador JSON",
			"pt": "Formatador JSON", "de": "JSON-Formatierer",
			"fr": "Formateur JSON", "hi": "JSON फ़ॉर्मेटर",
		},
		descriptions: map[string]string{
			"vi": "Định dạng, kiểm tra và làm đẹp dữ liệu JSON ngay trên trình duyệt.",
			"en": "Format, validate and beautify JSON data right in your browser.",
		},
		contents: map[string]string{
			"vi": "<p>Dán dữ liệu JSON vào ô bên dưới để định dạng và kiểm tra cú pháp. Mọi xử lý diễn ra trên trình duyệt của bạn, dữ liệu không được gửi đi đâu cả.</p>",
			"en": "<p>Paste your JSON into the box below to format it and validate the syntax. Everything runs in your browser, the data never leaves your machine.</p>",
		},
	},
	{
		slug:         "password-generator",
		categorySlug: "security-tools",
		componentKey: "password-gen-logic",
		names: map[string]string{
			"en": "Password Generator", "vi": "Tạo mật khẩu", "ja": "パスワード生成",
			"ko": "비밀번호 생성기", "id": "Pembuat Kata Sandi", "es": "Generador de contraseñas",
			"pt": "Gerador de senhas", "de": "Passwort-Generator",
			"fr": "Générateur de mots de passe", "hi": "पासवर्ड जनरेटर",
		},
		descriptions: map[string]string{
			"vi": "Tạo mật khẩu ngẫu nhiên, an toàn với độ dài và bộ ký tự tùy chọn.",
			"en": "Generate strong random passwords with configurable length and character sets.",
		},
		contents: map[string]string{
			"vi": "<p>Chọn độ dài và các loại ký tự rồi bấm tạo. Mật khẩu được sinh bằng bộ sinh số ngẫu nhiên của trình duyệt và không bao giờ rời khỏi máy của bạn.</p>",
			"en": "<p>Pick a length and the character classes, then hit generate. Passwords come from your browser's random number generator and never leave your machine.</p>",
		},
	},
	{
		slug:         "base64-encoder-decoder",
		categorySlug: "developer-tools",
		componentKey: "base64-logic",
		names: map[string]string{
			"en": "Base64 Encoder/Decoder", "vi": "Mã hóa Base64", "ja": "Base64エンコーダー",
			"ko": "Base64 인코더", "id": "Encoder Base64", "es": "Codificador Base64",
			"pt": "Codificador Base64", "de": "Base64-Kodierer",
			"fr": "Encodeur Base64", "hi": "Base64 एनकोडर",
		},
		descriptions: map[string]string{
			"vi": "Mã hóa và giải mã văn bản Base64 tức thì.",
			"en": "Encode and decode Base64 text instantly.",
		},
		contents: map[string]string{
			"vi": "<p>Nhập văn bản để mã hóa hoặc dán chuỗi Base64 để giải mã. Công cụ hỗ trợ đầy đủ Unicode.</p>",
			"en": "<p>Type text to encode it or paste a Base64 string to decode it. Full Unicode input is supported.</p>",
		},
	},
	{
		slug:         "meta-tag-checker",
		categorySlug: "seo-tools",
		componentKey: "meta-tag-checker-logic",
		names: map[string]string{
			"en": "Meta Tag Checker", "vi": "Kiểm tra thẻ meta", "ja": "メタタグチェッカー",
			"ko": "메타 태그 검사기", "id": "Pemeriksa Meta Tag", "es": "Comprobador de metaetiquetas",
			"pt": "Verificador de meta tags", "de": "Meta-Tag-Prüfer",
			"fr": "Vérificateur de balises meta", "hi": "मेटा टैग चेकर",
		},
		descriptions: map[string]string{
			"vi": "Phân tích thẻ meta của một trang HTML và chỉ ra các thẻ SEO còn thiếu.",
			"en": "Analyze the meta tags of an HTML page and flag missing SEO tags.",
		},
		contents: map[string]string{
			"vi": "<p>Dán mã HTML của trang vào ô bên dưới. Công cụ liệt kê các thẻ tiêu đề, mô tả, Open Graph và chỉ ra thẻ nào đang thiếu.</p>",
			"en": "<p>Paste the page HTML into the box below. The tool lists the title, description and Open Graph tags and flags the ones that are missing.</p>",
		},
	},
}

// Seed creates the initial catalogue: three categories and four published
// tools, each with a translation row for every supported language. Languages
// without authored text get the name only; description and content stay empty
// rather than borrowing another language's text.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	// Skip when any catalogue data already exists
	count, err := queries.CountTools(ctx)
	if err != nil {
		return fmt.Errorf("counting tools: %w", err)
	}
	if count > 0 {
		slog.Info("catalogue already seeded, skipping")
		return nil
	}

	now := time.Now()
	categoryIDs := make(map[string]int64, len(seedCategories))

	for _, sc := range seedCategories {
		category, err := queries.CreateCategory(ctx, CreateCategoryParams{
			Slug:              sc.slug,
			CanonicalLanguage: model.CanonicalLanguage,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
		if err != nil {
			return fmt.Errorf("creating category %q: %w", sc.slug, err)
		}
		categoryIDs[sc.slug] = category.ID

		for _, lang := range model.LanguageCodes() {
			if _, err := queries.CreateCategoryTranslation(ctx, CreateCategoryTranslationParams{
				CategoryID: category.ID,
				Language:   lang,
				Name:       sc.names[lang],
				CreatedAt:  now,
			}); err != nil {
				return fmt.Errorf("creating category translation %q/%s: %w", sc.slug, lang, err)
			}
		}
	}

	for i, st := range seedTools {
		// Stagger creation times so newest-first ordering is deterministic
		createdAt := now.Add(time.Duration(i) * time.Second)

		tool, err := queries.CreateTool(ctx, CreateToolParams{
			Slug:              st.slug,
			CategoryID:        categoryIDs[st.categorySlug],
			ComponentKey:      st.componentKey,
			CanonicalLanguage: model.CanonicalLanguage,
			CreatedAt:         createdAt,
			UpdatedAt:         createdAt,
		})
		if err != nil {
			return fmt.Errorf("creating tool %q: %w", st.slug, err)
		}

		for _, lang := range model.LanguageCodes() {
			if _, err := queries.CreateToolTranslation(ctx, CreateToolTranslationParams{
				ToolID:      tool.ID,
				Language:    lang,
				Name:        st.names[lang],
				Description: st.descriptions[lang],
				Content:     st.contents[lang],
				CreatedAt:   createdAt,
			}); err != nil {
				return fmt.Errorf("creating tool translation %q/%s: %w", st.slug, lang, err)
			}
		}

		if _, err := queries.SetToolPublished(ctx, SetToolPublishedParams{
			ID:          tool.ID,
			IsPublished: true,
			PublishedAt: sql.NullTime{Time: createdAt, Valid: true},
			UpdatedAt:   createdAt,
		}); err != nil {
			return fmt.Errorf("publishing tool %q: %w", st.slug, err)
		}

		slog.Info("seeded tool", "slug", st.slug, "languages", len(model.LanguageCodes()))
	}

	return nil
}
