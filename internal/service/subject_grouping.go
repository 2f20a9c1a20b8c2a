package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/moondec/syllabus/internal/model"
)

// UndeterminedLevel 未填写培养层次的候选归入此组
const UndeterminedLevel = "Poziom nieokreślony"

// SubjectGroup 同一培养层次下的候选课程
type SubjectGroup struct {
	Level   string        `json:"level"`
	Members []GroupMember `json:"members"`
}

// GroupMember 候选在上传结果中的下标及记录
type GroupMember struct {
	Index  int                   `json:"index"`
	Record *model.SyllabusRecord `json:"-"`
}

// subjectPrefix 课程名开头的 "<int>.<int>" 编号，如 "3.12 Algebra liniowa"
var subjectPrefix = regexp.MustCompile(`^(\d+)\.(\d+)`)

// GroupSubjects 按培养层次分组并在组内排序
//
// 组顺序为各层次在输入中首次出现的顺序；组内按编号前缀 (major, minor) 升序，
// 无法解析的排在最后；编号相同或均无编号时按完整课程名（区分大小写）比较。
// 排序稳定，相同输入总是得到相同输出。
func GroupSubjects(records []*model.SyllabusRecord) []SubjectGroup {
	var groups []SubjectGroup
	pos := make(map[string]int)

	for i, rec := range records {
		if rec == nil {
			continue
		}
		level := levelLabel(rec.Get(model.FieldLevel))
		gi, ok := pos[level]
		if !ok {
			gi = len(groups)
			pos[level] = gi
			groups = append(groups, SubjectGroup{Level: level})
		}
		groups[gi].Members = append(groups[gi].Members, GroupMember{Index: i, Record: rec})
	}

	for gi := range groups {
		members := groups[gi].Members
		keys := make([]rankKey, len(members))
		for i, m := range members {
			keys[i] = newRankKey(m.Record.SubjectName())
		}
		idx := make([]int, len(members))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return keys[idx[a]].less(keys[idx[b]])
		})
		sorted := make([]GroupMember, len(members))
		for i, j := range idx {
			sorted[i] = members[j]
		}
		groups[gi].Members = sorted
	}

	return groups
}

// levelLabel 去空白并将首字母大写；空值归入哨兵组
func levelLabel(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return UndeterminedLevel
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

type rankKey struct {
	parsed       bool
	major, minor int
	name         string
}

func newRankKey(name string) rankKey {
	k := rankKey{name: name}
	m := subjectPrefix.FindStringSubmatch(name)
	if m == nil {
		return k
	}
	major, err1 := strconv.Atoi(m[1])
	minor, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		// 超出 int 范围按无编号处理
		return k
	}
	k.parsed, k.major, k.minor = true, major, minor
	return k
}

func (k rankKey) less(o rankKey) bool {
	if k.parsed != o.parsed {
		return k.parsed
	}
	if k.parsed {
		if k.major != o.major {
			return k.major < o.major
		}
		if k.minor != o.minor {
			return k.minor < o.minor
		}
	}
	return k.name < o.name
}
