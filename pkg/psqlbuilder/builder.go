package psqlbuilder

import (
	"github.com/Masterminds/squirrel"
)

// builder базовый конструктор запросов с $-плейсхолдерами для PostgreSQL
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Select создает SELECT запрос
func Select(columns ...string) squirrel.SelectBuilder {
	return builder.Select(columns...)
}

// Insert создает INSERT запрос
func Insert(into string) squirrel.InsertBuilder {
	return builder.Insert(into)
}

// Update создает UPDATE запрос
func Update(table string) squirrel.UpdateBuilder {
	return builder.Update(table)
}

// Delete создает DELETE запрос
func Delete(from string) squirrel.DeleteBuilder {
	return builder.Delete(from)
}
