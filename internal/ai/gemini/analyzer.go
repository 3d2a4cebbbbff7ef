package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/spigell/program-matcher/internal/ai"
	"github.com/spigell/program-matcher/internal/logger"
	"github.com/spigell/program-matcher/internal/programs"
	"github.com/spigell/program-matcher/internal/textnorm"
	"github.com/spigell/program-matcher/internal/utils"
)

const (
	Provider = "gemini"

	defaultMaxLogLength = 200
	programContentLimit = 3000
	schemaURL           = "analysis.schema.json"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

//go:embed analysis.schema.json
var analysisSchema []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(analysisSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// Analyzer asks Gemini for a structured fit analysis of one program.
type Analyzer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAnalyzer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Analyzer{
		generator: generator,
		logger:    logger.WithCommonFields(log, Provider, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (a *Analyzer) ModelVersion() string {
	return a.generator.Model()
}

func (a *Analyzer) Analyze(ctx context.Context, profile *programs.CompanyProfile, program *programs.Program) (*ai.Analysis, error) {
	if profile == nil {
		return nil, fmt.Errorf("company profile is required")
	}
	if program == nil {
		return nil, fmt.Errorf("program is required")
	}

	prompt := buildPrompt(companyContext(profile), programContext(program))
	fields := logger.MatchFields(profile.UserID, program.ID)

	a.logger.Debug("gemini generate content request", append(fields,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)...)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content response", append(fields,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)...)

	return parseResponse(raw)
}

func buildPrompt(company, program string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "{{COMPANY_CONTEXT}}\n\n{{PROGRAM_CONTEXT}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{COMPANY_CONTEXT}}", company)
	prompt = strings.ReplaceAll(prompt, "{{PROGRAM_CONTEXT}}", program)
	return prompt
}

func companyContext(p *programs.CompanyProfile) string {
	flag := func(v bool) string {
		if v {
			return "예"
		}
		return "아니오"
	}
	number := func(v int, unit string) string {
		if v <= 0 {
			return "미입력"
		}
		return strconv.Itoa(v) + unit
	}
	revenue := p.RevenueLabel()
	if revenue == "" {
		revenue = "미입력"
	}

	var b strings.Builder
	b.WriteString("## 회사 정보\n")
	fmt.Fprintf(&b, "- 회사명: %s\n", orMissing(p.CompanyName))
	fmt.Fprintf(&b, "- 대표자: %s\n", orMissing(p.CEOName))
	fmt.Fprintf(&b, "- 업종: %s / %s\n", orMissing(p.IndustryCategory), p.IndustrySubcategory)
	fmt.Fprintf(&b, "- 업력: %s\n", number(p.BusinessYears, "년"))
	fmt.Fprintf(&b, "- 창업단계: %s\n", orMissing(p.StartupStage))
	fmt.Fprintf(&b, "- 직원수: %s\n", number(p.EmployeeCount, "명"))
	fmt.Fprintf(&b, "- 매출: %s\n", revenue)
	fmt.Fprintf(&b, "- 지역: %s %s\n", orMissing(p.Region), p.City)
	fmt.Fprintf(&b, "- 사업자유형: %s\n\n", orMissing(p.EntityType))
	fmt.Fprintf(&b, "## 사업 내용\n%s\n\n", orMissing(p.BusinessDescription))
	fmt.Fprintf(&b, "## 주요 제품/서비스\n%s\n\n", orMissing(p.MainProducts))
	fmt.Fprintf(&b, "## 핵심 기술\n%s\n\n", orMissing(p.CoreTechnologies))
	fmt.Fprintf(&b, "## 보유 인증\n%s\n\n", orDefault(strings.Join(p.TechCertifications, ", "), "없음"))
	fmt.Fprintf(&b, "## 관심 분야\n%s\n\n", orMissing(strings.Join(p.InterestedCategories, ", ")))
	fmt.Fprintf(&b, "## 관심 키워드\n%s\n\n", orMissing(strings.Join(p.InterestedKeywords, ", ")))
	b.WriteString("## 특수 조건\n")
	fmt.Fprintf(&b, "- 청년창업: %s\n", flag(p.IsYouthStartup))
	fmt.Fprintf(&b, "- 여성기업: %s\n", flag(p.IsFemaleOwned))
	fmt.Fprintf(&b, "- 사회적기업: %s\n", flag(p.IsSocialEnterprise))
	fmt.Fprintf(&b, "- 벤처인증: %s\n", flag(p.IsVentureCertified))
	fmt.Fprintf(&b, "- 수출기업: %s\n", flag(p.IsExportBusiness))
	return b.String()
}

func programContext(p *programs.Program) string {
	content := utils.TruncateRunes(textnorm.StripMarkup(p.Content), programContentLimit)

	var b strings.Builder
	b.WriteString("## 지원사업 정보\n")
	fmt.Fprintf(&b, "- 제목: %s\n", p.Title)
	fmt.Fprintf(&b, "- 주관기관: %s\n", orMissing(p.Organization))
	fmt.Fprintf(&b, "- 수행기관: %s\n", orMissing(p.ExecutingAgency))
	fmt.Fprintf(&b, "- 카테고리: %s\n", orMissing(p.Category))
	fmt.Fprintf(&b, "- 지원유형: %s\n", orMissing(p.SupportType))
	fmt.Fprintf(&b, "- 신청기간: %s\n", p.ApplyPeriod())
	fmt.Fprintf(&b, "- 지원금액: %s\n\n", orDefault(p.SupportAmount, "공고 참조"))
	fmt.Fprintf(&b, "## 상세 내용\n%s\n", content)
	return b.String()
}

func parseResponse(raw string) (*ai.Analysis, error) {
	cleaned := extractJSON(raw)

	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(data); err != nil {
		return nil, fmt.Errorf("gemini response does not match schema: %w", err)
	}

	var analysis ai.Analysis
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &analysis,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	analysis.Normalize()
	if err := analysis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gemini analysis: %w", err)
	}
	return &analysis, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	// Models sometimes wrap the object in prose.
	if !strings.HasPrefix(raw, "{") {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start != -1 && end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}

func orMissing(value string) string {
	return orDefault(value, "미입력")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
