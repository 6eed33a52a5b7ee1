package analyzer

import "fmt"

const promptTemplate = `Analyze this blood test report and provide a structured response.
Format your response exactly as a JSON object with the following structure:
{
    "patientInfo": {
        "name": "string",
        "age": "string",
        "gender": "string",
        "date": "string"
    },
    "abnormalResults": [
        {
            "parameter": "string",
            "value": number,
            "unit": "string",
            "interpretation": "string"
        }
    ],
    "allResults": [
        {
            "parameter": "string",
            "value": number,
            "unit": "string",
            "referenceRange": "string",
            "status": "string"
        }
    ],
    "recommendations": [
        "string"
    ]
}

The response must be valid JSON. Extract all relevant information from this blood report:
%s`

func buildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
