package classifier

import "fmt"

// Enhancement prompts instruct the model to return JSON with a fixed field
// set per document type. Input text is capped at aiInputLimit runes.

func generalAnalysisPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following educational document content and return results in JSON format:
1. Determine document type (syllabus, lecture notes, worksheet, exam, textbook, etc.)
2. Extract main educational objectives or key points
3. Identify key concepts and terminology
4. Determine appropriate educational level (elementary, middle school, high school, university)

Please return the results in JSON format with the following fields:
- document_type: Document type
- educational_level: Educational level
- key_concepts: List of key concepts
- main_objectives: List of main objectives

Educational document content:
%s`, TruncateRunes(text, aiInputLimit))
}

func syllabusAnalysisPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following syllabus and return results in JSON format:
1. Extract basic course information (course name, instructor, credits, etc.)
2. Extract learning objectives
3. Organize course outline/weekly topics
4. Extract grading criteria and assignment requirements

Please return the results in JSON format with the following fields:
- course_info: Basic course information
- learning_objectives: List of learning objectives
- weekly_schedule: Weekly topics and content
- assessment: Assessment methods and criteria

Syllabus content:
%s`, TruncateRunes(text, aiInputLimit))
}

func worksheetAnalysisPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following worksheet and return results in JSON format:
1. Determine exercise topic and corresponding knowledge points
2. Extract all questions and classify them (multiple choice, fill-in-blank, open-ended, etc.)
3. Estimate difficulty level

Please return the results in JSON format with the following fields:
- topic: Exercise topic
- knowledge_points: Related knowledge points
- questions: List of questions, each with type, content, and options (if applicable)
- difficulty_level: Difficulty assessment on scale of 1-5

Worksheet content:
%s`, TruncateRunes(text, aiInputLimit))
}

func examAnalysisPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following exam paper and return results in JSON format:
1. Identify exam subject and scope
2. Extract all questions and their point values
3. Identify question type distribution
4. Estimate overall difficulty

Please return the results in JSON format with the following fields:
- exam_subject: Exam subject
- exam_scope: Exam scope
- total_points: Total points
- question_distribution: Number and point values for different question types
- questions: List of questions including type, point value, and content
- difficulty_analysis: Difficulty analysis

Exam content:
%s`, TruncateRunes(text, aiInputLimit))
}
