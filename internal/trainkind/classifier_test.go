package trainkind

import (
	"testing"

	"github.com/BearBump/TrainBox/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ClassifierSuite struct {
	suite.Suite
}

func (s *ClassifierSuite) TestPrefixBeforeNumber() {
	k := Classify("FR AV", "", "", "9544")
	s.Equal("FR", k.ShortCode)
	s.Equal(models.CategoryHighSpeed, k.Category)

	k = Classify("REG", "", "", "12345")
	s.Equal("REG", k.ShortCode)
	s.Equal(models.CategoryRegional, k.Category)

	k = Classify("FR 9544")
	s.Equal("FR", k.ShortCode)
}

func (s *ClassifierSuite) TestUnknown() {
	k := Classify("ZZZ")
	s.Equal("UNK", k.ShortCode)
	s.Equal("Sconosciuto", k.LongLabel)
	s.Equal(models.CategoryUnknown, k.Category)

	s.Equal(Unknown(), Classify())
	s.Equal(Unknown(), Classify("", "   ", "9544"))
}

func (s *ClassifierSuite) TestWholeStringMatch() {
	k := Classify("  frecciarossa  ")
	s.Equal("FR", k.ShortCode)

	k = Classify("Regionale   Veloce")
	s.Equal("RV", k.ShortCode)

	k = Classify("INTERCITY NOTTE")
	s.Equal("ICN", k.ShortCode)
}

func (s *ClassifierSuite) TestWholeStringIsExactNotSubstring() {
	s.Equal(Unknown(), Classify("FRECCIAROSSAX"))
}

func (s *ClassifierSuite) TestUnknownIsNotShared() {
	k := Unknown()
	k.ShortCode = "FR"
	k.Category = models.CategoryHighSpeed

	s.Equal("UNK", Unknown().ShortCode)
	s.Equal(models.CategoryUnknown, Classify("ZZZ").Category)
}

func (s *ClassifierSuite) TestPrefixNeedsTrailingNonLetter() {
	s.Equal("FR", Classify("FR9544").ShortCode)
	s.Equal("FR", Classify("FR").ShortCode)
	s.Equal(Unknown(), Classify("FRX 9544"))
	s.Equal(Unknown(), Classify("REGX"))
}

func (s *ClassifierSuite) TestCallerOrderWins() {
	k := Classify("IC", "FR")
	s.Equal("IC", k.ShortCode)

	k = Classify("??", "FR")
	s.Equal("FR", k.ShortCode)
}

func (s *ClassifierSuite) TestSingleLetterDoesNotShadowSpecific() {
	s.Equal("RV", Classify("RV 2345").ShortCode)
	s.Equal("REG", Classify("R 2345").ShortCode)
	s.Equal(models.CategoryRegional, Classify("R 2345").Category)
	s.Equal("ICN", Classify("ICN 795").ShortCode)
	s.Equal("IC", Classify("IC 795").ShortCode)
}

func (s *ClassifierSuite) TestBus() {
	s.Equal(models.CategoryBus, Classify("BU 123").Category)
	s.Equal(models.CategoryBus, Classify("servizio sostitutivo").Category)
}

func (s *ClassifierSuite) TestPunctuatedPrefix() {
	s.Equal("ES", Classify("ES*9401").ShortCode)
}

func TestClassifierSuite(t *testing.T) {
	suite.Run(t, new(ClassifierSuite))
}

func TestRules_SingleLetterFallbacksLast(t *testing.T) {
	rs := Rules()
	firstSingle := -1
	for i, r := range rs {
		for _, tok := range r.Tokens {
			if len(tok) == 1 && firstSingle < 0 {
				firstSingle = i
			}
		}
	}
	require.Greater(t, firstSingle, 0)
	for _, r := range rs[:firstSingle] {
		for _, tok := range r.Tokens {
			require.Greater(t, len(tok), 1, "rule %s", r.Kind.ShortCode)
		}
	}
}

func TestRules_CopyIsDetached(t *testing.T) {
	rs := Rules()
	rs[0] = Rule{}
	require.Equal(t, "FR", Rules()[0].Kind.ShortCode)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "FR AV", Normalize("  fr   av "))
	require.Equal(t, "", Normalize("   "))
}
