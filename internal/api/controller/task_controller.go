package controller

import (
	"ctchen222/task-manager/internal/api/apperror"
	"ctchen222/task-manager/internal/api/middleware"
	"ctchen222/task-manager/internal/api/models"
	"ctchen222/task-manager/internal/api/response"
	"ctchen222/task-manager/internal/api/service"
	"fmt"

	"github.com/gin-gonic/gin"
)

// TaskController handles /api/tasks. Routes are expected to sit behind
// middleware.RequireUser.
type TaskController struct {
	taskService service.TaskService
}

func NewTaskController(taskService service.TaskService) *TaskController {
	return &TaskController{taskService: taskService}
}

func (tc *TaskController) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	tasks, err := tc.taskService.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tasks)
}

func (tc *TaskController) Get(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := taskID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	task, err := tc.taskService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if task == nil {
		response.Error(c, apperror.NewTaskNotFound(id))
		return
	}
	response.OK(c, task)
}

func (tc *TaskController) Create(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req models.CreateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	task, err := tc.taskService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fmt.Sprintf("/api/tasks/%d", task.ID), task)
}

func (tc *TaskController) Update(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := taskID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.UpdateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	task, err := tc.taskService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, task)
}

func (tc *TaskController) Delete(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := taskID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	deleted, err := tc.taskService.Delete(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !deleted {
		response.Error(c, apperror.NewTaskNotFound(id))
		return
	}
	response.NoContent(c)
}
