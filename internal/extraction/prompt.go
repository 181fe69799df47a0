package extraction

import (
	_ "embed"
	"strings"
)

//go:embed prompt.md
var promptTemplate string

const resumePlaceholder = "{{RESUME_TEXT}}"

// Field labels the service is asked to use, independent of the resume language.
const (
	FieldFullName          = "Full Name"
	FieldEmail             = "Email"
	FieldPhone             = "Phone Number"
	FieldLocation          = "Location"
	FieldLinkedIn          = "LinkedIn URL"
	FieldGithub            = "Github URL"
	FieldSkills            = "Skills"
	FieldEducation         = "Education"
	FieldWorkExperience    = "Work Experience"
	FieldCertifications    = "Certifications"
	FieldSeniority         = "Seniority Level"
	FieldYearsOfExperience = "Years of Experience"
	FieldProgrammingLangs  = "Primary Programming Languages"
	FieldPrimaryIndustry   = "Primary Industry"
)

// BuildPrompt embeds the resume text into the extraction instructions.
func BuildPrompt(resumeText string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Extract the resume fields as a single JSON object.\n\nResume:\n" + resumePlaceholder
	}
	return strings.ReplaceAll(template, resumePlaceholder, strings.TrimSpace(resumeText))
}
