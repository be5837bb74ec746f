package routes_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"chemsnap/backend/models"
)

func createClass(t *testing.T, token, name string) (uint, string) {
	t.Helper()
	resp := request(t, "POST", "/api/classes", token, map[string]string{
		"name":    name,
		"subject": "Chemistry",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create class: status %d", resp.StatusCode)
	}
	data := dataOf(t, resp)
	return uint(data["id"].(float64)), data["join_code"].(string)
}

func TestStudentCannotCreateClass(t *testing.T) {
	student := seedUser(t, uniqueName("student"), "student")

	resp := request(t, "POST", "/api/classes", login(t, student.Username), map[string]string{
		"name": "Shadow Class",
	})

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestClassLifecycle(t *testing.T) {
	teacher := seedUser(t, uniqueName("teacher"), "teacher")
	student := seedUser(t, uniqueName("student"), "student")
	teacherToken := login(t, teacher.Username)
	studentToken := login(t, student.Username)

	classID, joinCode := createClass(t, teacherToken, "Year 11 Chemistry")

	// Student joins by code.
	resp := request(t, "POST", "/api/classes/join", studentToken, map[string]string{
		"join_code": joinCode,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Joining twice is rejected.
	resp = request(t, "POST", "/api/classes/join", studentToken, map[string]string{
		"join_code": joinCode,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Both sides now see the class, but only the teacher sees the join code.
	resp = request(t, "GET", "/api/classes", teacherToken, nil)
	data := dataOf(t, resp)
	classes := data["classes"].([]interface{})
	assert.NotEmpty(t, classes)
	first := classes[0].(map[string]interface{})
	assert.Equal(t, joinCode, first["join_code"])

	resp = request(t, "GET", "/api/classes", studentToken, nil)
	data = dataOf(t, resp)
	found := false
	for _, entry := range data["classes"].([]interface{}) {
		cl := entry.(map[string]interface{})
		if uint(cl["id"].(float64)) == classID {
			found = true
			_, hasCode := cl["join_code"]
			assert.False(t, hasCode)
		}
	}
	assert.True(t, found)
}

func TestOnlyOwningTeacherEditsClass(t *testing.T) {
	owner := seedUser(t, uniqueName("owner"), "teacher")
	other := seedUser(t, uniqueName("other"), "teacher")

	classID, _ := createClass(t, login(t, owner.Username), "Owned Class")

	resp := request(t, "PUT", urlf("/api/classes/%d", classID), login(t, other.Username), map[string]string{
		"name": "Hijacked",
	})

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAssignmentFlow(t *testing.T) {
	teacher := seedUser(t, uniqueName("teacher"), "teacher")
	student := seedUser(t, uniqueName("student"), "student")
	outsider := seedUser(t, uniqueName("outsider"), "student")
	teacherToken := login(t, teacher.Username)
	studentToken := login(t, student.Username)
	outsiderToken := login(t, outsider.Username)

	classID, joinCode := createClass(t, teacherToken, "Organic Chemistry")
	request(t, "POST", "/api/classes/join", studentToken, map[string]string{"join_code": joinCode})

	// Teacher posts an assignment.
	resp := request(t, "POST", urlf("/api/classes/%d/assignments", classID), teacherToken, map[string]string{
		"title":        "Alkanes worksheet",
		"instructions": "Questions 1-10",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assignmentID := uint(dataOf(t, resp)["id"].(float64))

	// Enrolled student sees it and submits.
	resp = request(t, "GET", urlf("/api/classes/%d/assignments", classID), studentToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, "POST", urlf("/api/assignments/%d/submissions", assignmentID), studentToken, map[string]string{
		"body": "My answers",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// A student who never enrolled is refused at the policy, not the query.
	resp = request(t, "POST", urlf("/api/assignments/%d/submissions", assignmentID), outsiderToken, map[string]string{
		"body": "Sneaky answers",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Teacher lists and grades.
	resp = request(t, "GET", urlf("/api/assignments/%d/submissions", assignmentID), teacherToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	submissions := dataOf(t, resp)["submissions"].([]interface{})
	assert.Len(t, submissions, 1)
	submissionID := uint(submissions[0].(map[string]interface{})["ID"].(float64))

	resp = request(t, "PUT", urlf("/api/submissions/%d/grade", submissionID), teacherToken, map[string]interface{}{
		"grade":    85.0,
		"feedback": "Good work",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var graded models.Submission
	db.First(&graded, submissionID)
	assert.NotNil(t, graded.Grade)
	assert.Equal(t, 85.0, *graded.Grade)
	assert.NotNil(t, graded.GradedAt)
}

func TestGradingIsOwnerOnly(t *testing.T) {
	owner := seedUser(t, uniqueName("owner"), "teacher")
	rival := seedUser(t, uniqueName("rival"), "teacher")
	student := seedUser(t, uniqueName("student"), "student")
	ownerToken := login(t, owner.Username)
	studentToken := login(t, student.Username)

	classID, joinCode := createClass(t, ownerToken, "Guarded Class")
	request(t, "POST", "/api/classes/join", studentToken, map[string]string{"join_code": joinCode})

	resp := request(t, "POST", urlf("/api/classes/%d/assignments", classID), ownerToken, map[string]string{
		"title": "Guarded assignment",
	})
	assignmentID := uint(dataOf(t, resp)["id"].(float64))

	resp = request(t, "POST", urlf("/api/assignments/%d/submissions", assignmentID), studentToken, map[string]string{
		"body": "work",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var submission models.Submission
	db.Where("assignment_id = ?", assignmentID).First(&submission)

	resp = request(t, "PUT", urlf("/api/submissions/%d/grade", submission.ID), login(t, rival.Username), map[string]interface{}{
		"grade": 10.0,
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
