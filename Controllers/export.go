package Controllers

import (
	"fmt"
	"net/http"
	"time"

	"RestroManage/Models"
	"RestroManage/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ExportController struct {
	DB *gorm.DB
}

func NewExportController(db *gorm.DB) *ExportController {
	return &ExportController{DB: db}
}

// ExportSchedule writes the restaurant's weekly task schedule as an xlsx
// workbook, one sheet per day in calendar order.
// GET /api/export/schedule
func (ec *ExportController) ExportSchedule(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)

	tasks, err := Models.GetTasksByRestaurant(ec.DB, restaurant.ID, Models.TaskFilters{})
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch tasks",
			"error":   err.Error(),
		})
	}

	byDay := make(map[Models.Day][]Models.Task)
	for _, task := range tasks {
		byDay[task.Day] = append(byDay[task.Day], task)
	}

	file := excelize.NewFile()
	defer file.Close()

	for _, day := range Models.AllDays {
		sheet := sheetName(day)
		if _, err := file.NewSheet(sheet); err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to build workbook",
				"error":   err.Error(),
			})
		}

		headers := map[string]string{
			"A1": "Task", "B1": "Description", "C1": "Category", "D1": "Type",
			"E1": "Status", "F1": "Image Required", "G1": "Video Required",
			"H1": "Initials", "I1": "Completed At",
		}
		for cell, value := range headers {
			file.SetCellValue(sheet, cell, value)
		}

		for index, task := range byDay[day] {
			row := index + 2
			file.SetCellValue(sheet, fmt.Sprintf("A%v", row), task.Task)
			file.SetCellValue(sheet, fmt.Sprintf("B%v", row), task.Description)
			file.SetCellValue(sheet, fmt.Sprintf("C%v", row), string(task.Category))
			file.SetCellValue(sheet, fmt.Sprintf("D%v", row), string(task.TaskType))
			file.SetCellValue(sheet, fmt.Sprintf("E%v", row), string(task.Status))
			file.SetCellValue(sheet, fmt.Sprintf("F%v", row), task.ImageRequired)
			file.SetCellValue(sheet, fmt.Sprintf("G%v", row), task.VideoRequired)
			if task.Initials != nil {
				file.SetCellValue(sheet, fmt.Sprintf("H%v", row), *task.Initials)
			}
			if task.CompletedAt != nil {
				file.SetCellValue(sheet, fmt.Sprintf("I%v", row), task.CompletedAt.Format(time.RFC3339))
			}
		}
	}
	file.DeleteSheet("Sheet1")

	buf, err := file.WriteToBuffer()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to write workbook",
			"error":   err.Error(),
		})
	}

	filename := fmt.Sprintf("Schedule %s %s.xlsx", restaurant.Name, time.Now().Format("2006-01-02"))
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}

// sheetName maps the lowercase schedule day to an Excel sheet title.
func sheetName(day Models.Day) string {
	name := string(day)
	if name == "" {
		return name
	}
	return string(name[0]-'a'+'A') + name[1:]
}
