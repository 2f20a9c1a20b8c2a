package client

import (
	"fmt"
	"strings"

	"github.com/moondec/syllabus/internal/model"
)

const (
	systemPromptPL = "Jesteś doświadczonym nauczycielem akademickim i ekspertem od pisania sylabusów (kart przedmiotów). " +
		"Twoim zadaniem jest pomóc w profesjonalnym sformułowaniu treści do wybranych sekcji sylabusa. " +
		"Pisz zwięźle, akademickim stylem, w języku polskim. Zwracaj sam wygenerowany tekst, bez owijania " +
		"go w dodatkowe komentarze czy przywitania."
	systemPromptEN = "You are an experienced academic instructor and expert in writing course syllabi. " +
		"Your task is to professionally formulate content for selected sections of a syllabus. " +
		"Write concisely, in an academic style, in English. Return only the generated text, " +
		"without any additional comments or greetings."
)

var outcomeCategoryNames = map[model.Language]map[string]string{
	model.LanguageNative: {
		model.FieldKnowledge:   "WIEDZA (absolwent zna i rozumie)",
		model.FieldSkills:      "UMIEJĘTNOŚCI (absolwent potrafi)",
		model.FieldCompetences: "KOMPETENCJE SPOŁECZNE (absolwent jest gotów do)",
	},
	model.LanguageTranslated: {
		model.FieldKnowledge:   "KNOWLEDGE (the graduate knows and understands)",
		model.FieldSkills:      "SKILLS (the graduate is able to)",
		model.FieldCompetences: "SOCIAL COMPETENCES (the graduate is ready to)",
	},
}

// buildPrompts 按字段类型与语言返回 (system, user) 提示词
func buildPrompts(req model.GenerationRequest) (string, string) {
	en := req.Language == model.LanguageTranslated
	system := systemPromptPL
	if en {
		system = systemPromptEN
	}
	ctx := req.ContextInfo
	name := req.SubjectName

	switch req.FieldType {
	case model.FieldObjectives:
		if en {
			return system, fmt.Sprintf(
				"Write the 'Course Objectives' for the course '%s' (field of study: %s, level: %s).\n"+
					"Course content (topics): %s\n\n"+
					"Formulate 2-4 concise objectives as bullet points (e.g. 'O1. To familiarize students with...').",
				name, ctx.Kierunek, ctx.Poziom, ctx.Tresci)
		}
		return system, fmt.Sprintf(
			"Napisz 'Cel przedmiotu' dla kursu '%s' (kierunek: %s, poziom: %s).\n"+
				"Treści programowe (zagadnienia): %s\n\n"+
				"Sformułuj 2-4 zwięzłe cele w punktach lub równoważnikach zdań (np. 'C1. Zapoznanie studentów z...').",
			name, ctx.Kierunek, ctx.Poziom, ctx.Tresci)

	case model.FieldTeachingMethods:
		if en {
			return system, fmt.Sprintf(
				"Propose 'Teaching Methods' for the course '%s'.\nCourse content: %s\n\n"+
					"List traditional and activating methods as bullet points (e.g. 'informational lecture', 'laboratory exercises', 'project-based method').",
				name, ctx.Tresci)
		}
		return system, fmt.Sprintf(
			"Zaproponuj 'Metody dydaktyczne' (sposób prowadzenia zajęć) dla przedmiotu '%s'.\nTreści programowe: %s\n\n"+
				"Wymień klasyczne i aktywizujące metody w formie krótkich punktów (np. 'wykład informacyjny', 'ćwiczenia laboratoryjne', 'metoda projektowa').",
			name, ctx.Tresci)

	case model.FieldKnowledge, model.FieldSkills, model.FieldCompetences:
		lang := model.LanguageNative
		if en {
			lang = model.LanguageTranslated
		}
		category := outcomeCategoryNames[lang][req.FieldType]
		symbols := symbolLines(ctx.SymbolsInfo)
		if en {
			return system + " Remember that the text should fit the category: " + category + ".",
				fmt.Sprintf(
					"Write descriptive learning outcomes for the course '%s' in the category '%s'.\nCourse content: %s\n\n"+
						"The following directional learning outcomes were selected as a basis:\n%s\n\n"+
						"Rephrase the text based on these directional outcomes so that it sounds specific to this course and is ready for insertion into the syllabus. "+
						"Use appropriate operational verbs (for knowledge: defines, explains; for skills: designs, calculates; for competences: cooperates, recognizes, etc.).",
					name, category, ctx.Tresci, symbols)
		}
		return system + " Pamiętaj, aby tekst pasował do kategorii: " + category + ".",
			fmt.Sprintf(
				"Napisz opisowe efekty uczenia się dla przedmiotu '%s' w kategorii '%s'.\nTreści programowe: %s\n\n"+
					"Dla tego przedmiotu wybrano następujące kierunkowe efekty uczenia się jako bazę:\n%s\n\n"+
					"Zredaguj tekst na podstawie tych efektów kierunkowych tak, aby brzmiał specyficznie dla tego przedmiotu i był gotowy do wstawienia do sylabusa. "+
					"Używaj odpowiednich czasowników operacyjnych (dla wiedzy: definiuje, objaśnia; dla umiejętności: projektuje, oblicza; dla kompetencji: współpracuje, dostrzega itp.).",
				name, category, ctx.Tresci, symbols)
	}

	if en {
		return system, fmt.Sprintf("Generate appropriate content for the section '%s' in the syllabus for the course '%s'.", req.FieldType, name)
	}
	return system, fmt.Sprintf("Wygeneruj odpowiednią treść dla sekcji '%s' w sylabusie przedmiotu '%s'.", req.FieldType, name)
}

func symbolLines(opts []model.OutcomeOption) string {
	lines := make([]string, 0, len(opts))
	for _, o := range opts {
		sym := o.Symbol
		if sym == "" {
			sym = "N/A"
		}
		lines = append(lines, "- "+sym+": "+o.Description)
	}
	return strings.Join(lines, "\n")
}

// stripFences 去掉模型偶尔包裹的 ``` 代码块
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && strings.HasPrefix(lines[n-1], "```") {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
