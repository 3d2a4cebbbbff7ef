package scoring

import (
	"strings"

	"github.com/spigell/program-matcher/internal/programs"
)

// KeywordSet binds a label (industry, region, stage, interest) to the keywords
// that signal it in announcement text. Tables are ordered; lookups scan in order.
type KeywordSet struct {
	Label    string
	Keywords []string
}

// Table is an ordered list of keyword sets.
type Table []KeywordSet

// Lookup returns the keywords for label, or nil.
func (t Table) Lookup(label string) []string {
	for _, set := range t {
		if set.Label == label {
			return set.Keywords
		}
	}
	return nil
}

var industryTable = Table{
	{Label: "정보통신업", Keywords: []string{"IT", "ICT", "소프트웨어", "SW", "플랫폼", "앱", "웹", "클라우드", "AI", "인공지능", "빅데이터", "데이터", "디지털", "테크", "스타트업", "핀테크", "블록체인", "SaaS", "솔루션"}},
	{Label: "제조업", Keywords: []string{"제조", "생산", "공장", "기계", "장비", "부품", "소재", "스마트팩토리", "자동화", "로봇", "3D프린팅"}},
	{Label: "바이오/헬스케어", Keywords: []string{"바이오", "헬스케어", "의료", "제약", "건강", "메디컬", "병원", "진단", "치료", "임상", "신약"}},
	{Label: "콘텐츠/미디어", Keywords: []string{"콘텐츠", "미디어", "영상", "게임", "엔터테인먼트", "크리에이터", "방송", "OTT", "웹툰", "애니메이션"}},
	{Label: "유통/물류", Keywords: []string{"유통", "물류", "이커머스", "커머스", "쇼핑", "배송", "풀필먼트", "라스트마일"}},
	{Label: "교육/에듀테크", Keywords: []string{"교육", "에듀테크", "학습", "강의", "LMS", "온라인교육", "이러닝"}},
	{Label: "환경/에너지", Keywords: []string{"환경", "에너지", "친환경", "ESG", "탄소", "신재생", "태양광", "전기차", "EV"}},
	{Label: "농업/식품", Keywords: []string{"농업", "식품", "푸드테크", "F&B", "농산물", "스마트팜"}},
	{Label: "금융/핀테크", Keywords: []string{"금융", "핀테크", "은행", "보험", "투자", "결제", "페이먼트"}},
	{Label: "부동산/건설", Keywords: []string{"부동산", "건설", "건축", "프롭테크", "인테리어"}},
}

var regionTable = Table{
	{Label: "서울", Keywords: []string{"서울", "수도권", "강남", "판교"}},
	{Label: "경기", Keywords: []string{"경기", "수도권", "판교", "성남", "수원", "화성"}},
	{Label: "인천", Keywords: []string{"인천", "수도권"}},
	{Label: "부산", Keywords: []string{"부산", "동남권", "경남"}},
	{Label: "대구", Keywords: []string{"대구", "경북", "대경권"}},
	{Label: "광주", Keywords: []string{"광주", "전남", "호남"}},
	{Label: "대전", Keywords: []string{"대전", "충청", "세종"}},
	{Label: "울산", Keywords: []string{"울산", "동남권"}},
	{Label: "세종", Keywords: []string{"세종", "충청", "대전"}},
	{Label: "강원", Keywords: []string{"강원", "춘천", "원주"}},
	{Label: "충북", Keywords: []string{"충북", "충청", "청주"}},
	{Label: "충남", Keywords: []string{"충남", "충청", "천안"}},
	{Label: "전북", Keywords: []string{"전북", "호남", "전주"}},
	{Label: "전남", Keywords: []string{"전남", "호남", "광주"}},
	{Label: "경북", Keywords: []string{"경북", "대경권", "포항"}},
	{Label: "경남", Keywords: []string{"경남", "동남권", "창원"}},
	{Label: "제주", Keywords: []string{"제주"}},
}

var stageTable = Table{
	{Label: programs.StagePreFounding, Keywords: []string{"예비", "예비창업자", "창업준비", "창업교육", "아이디어"}},
	{Label: programs.StageEarly, Keywords: []string{"초기", "초기창업", "시드", "seed", "3년이내", "7년이내", "신규창업"}},
	{Label: programs.StageGrowth, Keywords: []string{"성장", "도약", "스케일업", "scale-up", "확장"}},
	{Label: programs.StageMature, Keywords: []string{"글로벌", "해외진출", "IR", "투자유치", "시리즈"}},
}

var interestTable = Table{
	{Label: "자금지원", Keywords: []string{"융자", "보증", "대출", "자금", "지원금", "보조금", "출자", "투자"}},
	{Label: "기술개발", Keywords: []string{"R&D", "연구개발", "기술개발", "기술혁신", "연구소", "기술지원", "개발비"}},
	{Label: "R&D", Keywords: []string{"R&D", "연구개발", "기술개발", "과제", "연구소", "기술지원"}},
	{Label: "사업화", Keywords: []string{"사업화", "시제품", "제품화", "양산", "상용화", "제작지원"}},
	{Label: "판로개척", Keywords: []string{"판로", "마케팅", "수출", "해외진출", "판매", "입점", "전시회", "박람회"}},
	{Label: "인력지원", Keywords: []string{"인력", "채용", "고용", "인건비", "일자리", "청년고용"}},
	{Label: "시설", Keywords: []string{"입주", "공간", "센터", "보육", "오피스", "시설", "장비"}},
	{Label: "교육", Keywords: []string{"교육", "멘토링", "컨설팅", "아카데미", "강의", "역량강화"}},
}

// restrictedIndustry is an industry-only program family. A program whose title
// names one of TitleKeywords is open only to profiles whose industry contains
// one of ProfileMarkers.
type restrictedIndustry struct {
	Label          string
	TitleKeywords  []string
	ProfileMarkers []string
}

var restrictedIndustries = []restrictedIndustry{
	{Label: "농업/축산", TitleKeywords: []string{"농업", "농산물", "축산", "영농", "농촌", "농가", "스마트팜", "농기계", "양식", "어업", "수산"}, ProfileMarkers: []string{"농"}},
	{Label: "관광/요식", TitleKeywords: []string{"관광", "여행", "호텔", "숙박", "음식점", "요식업", "외식", "카페"}, ProfileMarkers: []string{"관광", "요식"}},
	{Label: "건설/부동산", TitleKeywords: []string{"건설업", "건축업", "시공", "건물"}, ProfileMarkers: []string{"건설", "부동산"}},
	{Label: "바이오/의료", TitleKeywords: []string{"제약", "의약품", "임상", "병원", "의료기기", "헬스케어 전용"}, ProfileMarkers: []string{"바이오", "의료"}},
	{Label: "제조업 전용", TitleKeywords: []string{"제조공장", "생산라인", "제조설비", "공장자동화"}, ProfileMarkers: []string{"제조"}},
}

func (r *restrictedIndustry) admits(industry string) bool {
	for _, marker := range r.ProfileMarkers {
		if strings.Contains(industry, marker) {
			return true
		}
	}
	return false
}

func restrictionFor(title string) *restrictedIndustry {
	for idx := range restrictedIndustries {
		if containsAny(title, restrictedIndustries[idx].TitleKeywords...) {
			return &restrictedIndustries[idx]
		}
	}
	return nil
}

var (
	generalStartupKeywords = []string{"창업", "스타트업", "벤처", "중소기업", "소상공인", "혁신기업", "성장지원", "사업화", "R&D", "기술개발", "입주", "보육"}
	allIndustryPhrases     = []string{"전업종", "업종무관", "업종 제한 없"}
	nationwidePhrases      = []string{"전국", "지역무관"}
	globalKeywords         = []string{"글로벌", "해외", "수출"}
	youthKeywords          = []string{"청년", "39세", "youth", "만39세", "청년창업"}
)

// specialCondition is a preferential condition such as youth-owned or export-active.
type specialCondition struct {
	Label    string
	Keywords []string
	Points   int
	Has      func(*programs.CompanyProfile) bool
	// Holder and NonHolder describe the profile side in the detail.
	Holder    func(*programs.CompanyProfile) string
	NonHolder string
	// Absent is the program requirement when no keyword is found.
	Absent string
	// Youth marks the condition whose exclusive programs disqualify non-holders.
	Youth bool
}

func constant(s string) func(*programs.CompanyProfile) string {
	return func(*programs.CompanyProfile) string { return s }
}

var specialConditions = []specialCondition{
	{
		Label:     "청년기업",
		Keywords:  youthKeywords,
		Points:    6,
		Has:       func(p *programs.CompanyProfile) bool { return p.IsYouthStartup },
		Holder:    constant("대표자 만 39세 이하"),
		NonHolder: "해당 없음",
		Absent:    "연령 제한 없음",
		Youth:     true,
	},
	{
		Label:     "여성기업",
		Keywords:  []string{"여성", "여성기업", "여성창업", "woman"},
		Points:    6,
		Has:       func(p *programs.CompanyProfile) bool { return p.IsFemaleOwned },
		Holder:    constant("여성 대표 기업"),
		NonHolder: "해당 없음",
		Absent:    "성별 제한 없음",
	},
	{
		Label:     "사회적기업",
		Keywords:  []string{"사회적기업", "사회적경제", "소셜벤처", "협동조합"},
		Points:    6,
		Has:       func(p *programs.CompanyProfile) bool { return p.IsSocialEnterprise },
		Holder:    constant("사회적기업 인증"),
		NonHolder: "해당 없음",
		Absent:    "제한 없음",
	},
	{
		Label:    "벤처인증",
		Keywords: []string{"벤처", "벤처기업", "이노비즈", "inno-biz", "벤처인증"},
		Points:   5,
		Has: func(p *programs.CompanyProfile) bool {
			if p.IsVentureCertified {
				return true
			}
			for _, cert := range p.TechCertifications {
				if strings.Contains(cert, "벤처") || strings.Contains(cert, "이노비즈") {
					return true
				}
			}
			return false
		},
		Holder:    constant("벤처기업 인증 보유"),
		NonHolder: "미인증",
		Absent:    "인증 불요",
	},
	{
		Label:    "기술/특허",
		Keywords: []string{"특허", "기술인증", "연구소", "R&D", "기술개발", "지식재산", "IP"},
		Points:   5,
		Has:      func(p *programs.CompanyProfile) bool { return len(p.TechCertifications) > 0 },
		Holder: func(p *programs.CompanyProfile) string {
			certs := p.TechCertifications
			if len(certs) > 2 {
				certs = certs[:2]
			}
			return "보유: " + strings.Join(certs, ", ")
		},
		NonHolder: "없음",
		Absent:    "기술 요건 없음",
	},
	{
		Label:     "수출기업",
		Keywords:  []string{"수출", "해외진출", "글로벌", "해외시장", "수출기업"},
		Points:    5,
		Has:       func(p *programs.CompanyProfile) bool { return p.IsExportBusiness },
		Holder:    constant("수출/해외사업 진행중"),
		NonHolder: "내수 위주",
		Absent:    "수출 요건 없음",
	},
}

// programNature classifies programs by title and body keywords into a clause
// describing what the program offers.
type programNature struct {
	Title  []string
	Body   []string
	Clause string
}

var programNatures = []programNature{
	{Title: []string{"입주", "공간", "센터", "보육"}, Clause: "입주 공간 및 보육 프로그램을 제공하는"},
	{Title: []string{"융자", "보증", "대출"}, Clause: "저금리 융자 및 보증을 지원하는"},
	{Title: []string{"교육", "멘토링", "아카데미"}, Clause: "체계적인 교육과 멘토링을 제공하는"},
	{Body: []string{"시제품", "제작"}, Clause: "시제품 제작 및 사업화 자금을 지원하는"},
	{Title: []string{"마케팅"}, Body: []string{"판로"}, Clause: "마케팅 비용 및 판로 개척을 지원하는"},
}

var supportTypeNatures = map[string]string{
	"금융": "운영/시설 자금 융자 및 보증을 지원하는",
	"기술개발": "R&D 및 기술개발 비용을 지원하는",
	"사업화": "시제품 제작 및 사업 고도화 자금을 지원하는",
	"시설": "창업 공간 입주 및 보육을 지원하는",
	"인력": "신규 인력 채용 인건비를 지원하는",
	"판로": "마케팅 및 국내외 판로 개척을 돕는",
	"수출": "해외 시장 진출 및 수출 제반 비용을 지원하는",
	"교육": "실무 역량 강화 교육 및 멘토링을 제공하는",
	"행사": "네트워킹 및 전시회 참가를 지원하는",
}

const genericNature = "기업의 성장을 다각도로 지원하는"

// Industries lists the industry labels known to the keyword table.
func Industries() []string {
	labels := make([]string, 0, len(industryTable))
	for _, set := range industryTable {
		labels = append(labels, set.Label)
	}
	return labels
}

// RegionKeywords returns the keywords signalling region, or the region itself
// when it is not in the table.
func RegionKeywords(region string) []string {
	if keywords := regionTable.Lookup(region); keywords != nil {
		return keywords
	}
	return []string{region}
}

// ProfileKeywords returns the interested keywords of the profile, falling back
// to the keywords of its industry.
func ProfileKeywords(p *programs.CompanyProfile) []string {
	if len(p.InterestedKeywords) > 0 {
		return p.InterestedKeywords
	}
	return industryTable.Lookup(p.IndustryCategory)
}

// containsAny reports whether text contains any keyword, ignoring keyword case.
// text is expected to be lowercased when case matters.
func containsAny(text string, keywords ...string) bool {
	return findAny(text, keywords...) != ""
}

func findAny(text string, keywords ...string) string {
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(keyword)) || strings.Contains(text, keyword) {
			return keyword
		}
	}
	return ""
}
