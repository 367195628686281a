package models

// ResumeProfile is the structured view of an uploaded resume. It is built once by the
// resume parser and treated as read-only afterwards.
type ResumeProfile struct {
	RawText         string   `json:"-"`
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience_years"`
	ATSScore        int      `json:"ats_score"`
	FileType        string   `json:"file_type"`
}

// HasSkill reports whether the normalized skill set contains skill.
func (p *ResumeProfile) HasSkill(skill string) bool {
	if p == nil {
		return false
	}
	for _, s := range p.Skills {
		if s == skill {
			return true
		}
	}
	return false
}
