package model

// FieldKind 表单控件类型
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindSymbols  FieldKind = "multi-select"
	KindHours    FieldKind = "hours"
	KindReadOnly FieldKind = "readonly"
)

// FieldGroup 字段语义分组
type FieldGroup string

const (
	GroupIdentity  FieldGroup = "identity"
	GroupNarrative FieldGroup = "narrative"
	GroupHours     FieldGroup = "hours"
	GroupOutcomes  FieldGroup = "outcomes"
	GroupReference FieldGroup = "reference"
)

// FieldSpec 字段描述，供客户端渲染表单
type FieldSpec struct {
	Key         string          `json:"key"`
	Label       string          `json:"label"`
	Description string          `json:"desc"`
	Kind        FieldKind       `json:"type"`
	Group       FieldGroup      `json:"group"`
	Category    OutcomeCategory `json:"category,omitempty"`
	Editable    bool            `json:"editable"`
	Generatable bool            `json:"generatable"`
}

// ── 学时字段 ──

// HourActivities 学时分配中的活动类型（顺序即展示顺序），最后一项为合计
var HourActivities = []string{"wyklady", "cwiczenia", "laboratoria", "projekt", "seminarium", "razem"}

var hourActivityLabels = map[string]string{
	"wyklady":     "Wykłady",
	"cwiczenia":   "Ćwiczenia",
	"laboratoria": "Laboratoria",
	"projekt":     "Projekt",
	"seminarium":  "Seminarium",
	"razem":       "Razem",
}

// HourField 学时字段键；fullTime=true 为全日制（st），否则为非全日制（nst）
func HourField(fullTime bool, activity string) string {
	if fullTime {
		return "godziny_st_" + activity
	}
	return "godziny_nst_" + activity
}

// HourActivityLabel 活动类型显示名
func HourActivityLabel(activity string) string {
	if l, ok := hourActivityLabels[activity]; ok {
		return l
	}
	return activity
}

// ── 字段目录 ──

var fieldCatalog = buildFieldCatalog()

var fieldIndex = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, len(fieldCatalog))
	for _, f := range fieldCatalog {
		m[f.Key] = f
	}
	return m
}()

func buildFieldCatalog() []FieldSpec {
	specs := []FieldSpec{
		{Key: FieldSubjectName, Label: "Nazwa przedmiotu", Description: "Pełna nazwa kursu/modułu", Kind: KindText, Group: GroupIdentity},
		{Key: FieldSubjectNameEN, Label: "Nazwa w j. angielskim", Description: "Tłumaczenie nazwy przedmiotu", Kind: KindText, Group: GroupIdentity},
		{Key: FieldFieldOfStudy, Label: "Kierunek studiów", Description: "Sprecyzowany kierunek studiów", Kind: KindText, Group: GroupIdentity},
		{Key: FieldLevel, Label: "Poziom kształcenia", Description: "np. Studia I lub II stopnia", Kind: KindText, Group: GroupIdentity},
		{Key: FieldProfile, Label: "Profil kształcenia", Description: "np. ogólnoakademicki / praktyczny", Kind: KindText, Group: GroupIdentity},
		{Key: FieldStudyMode, Label: "Forma studiów", Description: "np. stacjonarne / niestacjonarne", Kind: KindText, Group: GroupIdentity},
		{Key: FieldSemester, Label: "Semestr", Description: "Domyślny semestr realizacji kursu", Kind: KindText, Group: GroupIdentity},
		{Key: FieldECTS, Label: "Punkty ECTS", Description: "Ilość punktów ECTS", Kind: KindText, Group: GroupIdentity},
		{Key: FieldUnit, Label: "Jednostka realizująca", Description: "Katedra lub wydział", Kind: KindText, Group: GroupIdentity},
		{Key: FieldInstructor, Label: "Kierownik przedmiotu", Description: "Tytuł i nazwisko prowadzącego", Kind: KindText, Group: GroupIdentity},

		{Key: FieldObjectives, Label: "Cel przedmiotu", Description: "Cele kształcenia", Kind: KindTextarea, Group: GroupNarrative},
		{Key: FieldPrerequisites, Label: "Założenia i wymagania", Description: "Wymagania wstępne", Kind: KindTextarea, Group: GroupNarrative},
		{Key: FieldTeachingMethods, Label: "Metody dydaktyczne", Description: "Sposób prowadzenia zajęć", Kind: KindTextarea, Group: GroupNarrative},
		{Key: FieldVerification, Label: "Metody weryfikacji", Description: "Jak sprawdzana jest wiedza", Kind: KindTextarea, Group: GroupNarrative},
		{Key: FieldLiterature, Label: "Literatura", Description: "Spis literatury podstawowej i uzupełniającej", Kind: KindTextarea, Group: GroupNarrative},
		{Key: FieldContent, Label: "Treści programowe", Description: "Krótki opis poruszanych zagadnień", Kind: KindTextarea, Group: GroupNarrative},
		{Key: FieldKnowledge, Label: "Wiedza (Opisowo)", Description: "Opisowe efekty w kategorii WIEDZA", Kind: KindTextarea, Group: GroupNarrative, Category: CategoryKnowledge},
		{Key: FieldSkills, Label: "Umiejętności (Opisowo)", Description: "Opisowe efekty w kategorii UMIEJĘTNOŚCI", Kind: KindTextarea, Group: GroupNarrative, Category: CategorySkills},
		{Key: FieldCompetences, Label: "Kompetencje społeczne (Opisowo)", Description: "Opisowe efekty w kategorii KOMPETENCJE", Kind: KindTextarea, Group: GroupNarrative, Category: CategoryCompetences},
		{Key: FieldAssessment, Label: "Formy zaliczenia", Description: "Sposób i wagi oceniania", Kind: KindTextarea, Group: GroupNarrative},
	}

	for _, fullTime := range []bool{true, false} {
		mode := "stacjonarne"
		if !fullTime {
			mode = "niestacjonarne"
		}
		for _, a := range HourActivities {
			specs = append(specs, FieldSpec{
				Key:         HourField(fullTime, a),
				Label:       HourActivityLabel(a) + " (" + mode + ")",
				Description: "Liczba godzin",
				Kind:        KindHours,
				Group:       GroupHours,
			})
		}
	}

	specs = append(specs,
		FieldSpec{Key: FieldOutcomesW, Label: "Symbole: WIEDZA", Description: "Symbole efektów kierunkowych (W)", Kind: KindSymbols, Group: GroupOutcomes, Category: CategoryKnowledge},
		FieldSpec{Key: FieldOutcomesU, Label: "Symbole: UMIEJĘTNOŚCI", Description: "Symbole efektów kierunkowych (U)", Kind: KindSymbols, Group: GroupOutcomes, Category: CategorySkills},
		FieldSpec{Key: FieldOutcomesK, Label: "Symbole: KOMPETENCJE", Description: "Symbole efektów kierunkowych (K)", Kind: KindSymbols, Group: GroupOutcomes, Category: CategoryCompetences},
		FieldSpec{Key: FieldRefOutcomes, Label: "Kierunkowe efekty uczenia się", Description: "Informacje pomocnicze z programu studiów", Kind: KindReadOnly, Group: GroupReference},
		FieldSpec{Key: FieldRefVerification, Label: "Sposoby weryfikacji", Description: "Informacje pomocnicze z programu studiów", Kind: KindReadOnly, Group: GroupReference},
	)

	for i := range specs {
		specs[i].Editable = specs[i].Kind != KindReadOnly
		specs[i].Generatable = specs[i].Group == GroupNarrative
	}
	return specs
}

// FieldCatalog 返回字段目录副本（展示顺序）
func FieldCatalog() []FieldSpec {
	return append([]FieldSpec(nil), fieldCatalog...)
}

// LookupField 按键查找字段描述
func LookupField(key string) (FieldSpec, bool) {
	f, ok := fieldIndex[key]
	return f, ok
}

// IsEditable 字段是否允许用户直接编辑
func IsEditable(key string) bool {
	f, ok := fieldIndex[key]
	return ok && f.Editable
}

// IsGeneratable 字段是否支持 AI 生成
func IsGeneratable(key string) bool {
	f, ok := fieldIndex[key]
	return ok && f.Generatable
}

// IsReadOnly 参考提示字段，永不编辑、永不作为生成上下文
func IsReadOnly(key string) bool {
	f, ok := fieldIndex[key]
	return ok && f.Kind == KindReadOnly
}
