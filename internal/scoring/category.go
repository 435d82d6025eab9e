package scoring

import (
	"strings"

	"score-engine/internal/model"
)

// Category 교과 분류
type Category string

const (
	CategoryKorean  Category = "korean"
	CategoryEnglish Category = "english"
	CategoryMath    Category = "math"
	CategorySocial  Category = "social"
	CategoryScience Category = "science"
	CategoryEtc     Category = "etc"
)

// Categories 고정된 교과 순서
var Categories = []Category{
	CategoryKorean,
	CategoryEnglish,
	CategoryMath,
	CategorySocial,
	CategoryScience,
	CategoryEtc,
}

// 교과(main subject) 이름 → 분류
var mainSubjectCategories = map[string]Category{
	"국어":          CategoryKorean,
	"영어":          CategoryEnglish,
	"수학":          CategoryMath,
	"사회":          CategorySocial,
	"사회(역사/도덕포함)": CategorySocial,
	"역사":          CategorySocial,
	"한국사":         CategorySocial,
	"도덕":          CategorySocial,
	"과학":          CategoryScience,
	"기술・가정":       CategoryEtc,
	"기술·가정":       CategoryEtc,
	"기술가정":        CategoryEtc,
	"제2외국어":       CategoryEtc,
	"한문":          CategoryEtc,
	"정보":          CategoryEtc,
	"교양":          CategoryEtc,
	"체육":          CategoryEtc,
	"음악":          CategoryEtc,
	"미술":          CategoryEtc,
	"예술":          CategoryEtc,
}

// 과목명 키워드 → 분류 (교과명이 비었거나 표에 없을 때)
// 앞에서부터 검사하므로 "생명과학"이 "과학"보다, "경제수학"이 "경제"보다 먼저 와야 한다
var subjectKeywords = []struct {
	keyword  string
	category Category
}{
	{"경제수학", CategoryMath},
	{"수학", CategoryMath},
	{"미적분", CategoryMath},
	{"확률과 통계", CategoryMath},
	{"확률과통계", CategoryMath},
	{"기하", CategoryMath},
	{"영어", CategoryEnglish},
	{"국어", CategoryKorean},
	{"문학", CategoryKorean},
	{"독서", CategoryKorean},
	{"화법", CategoryKorean},
	{"작문", CategoryKorean},
	{"언어와 매체", CategoryKorean},
	{"언어와매체", CategoryKorean},
	{"물리", CategoryScience},
	{"화학", CategoryScience},
	{"생명과학", CategoryScience},
	{"지구과학", CategoryScience},
	{"과학", CategoryScience},
	{"사회", CategorySocial},
	{"한국사", CategorySocial},
	{"역사", CategorySocial},
	{"세계사", CategorySocial},
	{"동아시아사", CategorySocial},
	{"지리", CategorySocial},
	{"윤리", CategorySocial},
	{"정치", CategorySocial},
	{"경제", CategorySocial},
	{"도덕", CategorySocial},
}

// Classify 교과명과 과목명으로 분류를 결정한다
// 어떤 입력이든 여섯 분류 중 하나를 반환하며 알 수 없으면 etc
func Classify(mainSubjectName, subjectName string) Category {
	main := strings.TrimSpace(mainSubjectName)
	if c, ok := mainSubjectCategories[main]; ok {
		return c
	}
	for _, name := range []string{main, strings.TrimSpace(subjectName)} {
		if name == "" {
			continue
		}
		for _, kw := range subjectKeywords {
			if strings.Contains(name, kw.keyword) {
				return kw.category
			}
		}
	}
	return CategoryEtc
}

// RatioFor 공식에서 분류별 반영 비율을 꺼낸다
func RatioFor(f *model.Formula, c Category) float64 {
	switch c {
	case CategoryKorean:
		return f.KoreanRatio
	case CategoryEnglish:
		return f.EnglishRatio
	case CategoryMath:
		return f.MathRatio
	case CategorySocial:
		return f.SocialRatio
	case CategoryScience:
		return f.ScienceRatio
	case CategoryEtc:
		return f.EtcRatio
	}
	return 0
}

// PartitionByCategory 과목 성적을 분류별로 나눈다
func PartitionByCategory(grades []model.SubjectGrade) map[Category][]model.SubjectGrade {
	out := make(map[Category][]model.SubjectGrade, len(Categories))
	for _, g := range grades {
		c := Classify(g.MainSubjectName, g.SubjectName)
		out[c] = append(out[c], g)
	}
	return out
}
