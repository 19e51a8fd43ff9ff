package i18n

const sameColumns = " A key concept is that all the rows in tabular data must have the same number of columns."

var en = map[string]entry{
	// task level
	"general-error":  {"General Error", "There is an error.", "General error: {note}"},
	"task-error":     {"Task Error", "General task-level error.", "The task has an error: {note}"},
	"check-error":    {"Check Error", "This check is not valid.", "The check has an error: {note}"},
	"source-error":   {"Source Error", "Data reading error because of not supported or inconsistent contents.", "The data source has not supported or has inconsistent contents: {note}"},
	"encoding-error": {"Encoding Error", "Data reading error because of an encoding problem.", "The data source could not be successfully decoded: {note}"},
	"schema-error":   {"Schema Error", "Provided schema is not valid.", "Schema is not valid: {note}"},
	"field-error":    {"Field Error", "There is a field error.", "Field is not valid: {note}"},
	"detector-error": {"Detector Error", "Provided detector options are not valid.", "Detector is not valid: {note}"},

	// file statistics
	"hash-count":  {"Hash Count Error", "This error can happen if the data is corrupted.", "The data source does not match the expected hash count: {note}"},
	"byte-count":  {"Byte Count Error", "This error can happen if the data is corrupted.", "The data source does not match the expected byte count: {note}"},
	"field-count": {"Field Count Error", "This error can happen if the data is corrupted.", "The data source does not match the expected field count: {note}"},
	"row-count":   {"Row Count Error", "This error can happen if the data is corrupted.", "The data source does not match the expected row count: {note}"},

	// table
	"table-dimensions": {"Table dimensions error", "This error can happen if the data is corrupted.", "The data source does not have the required dimensions: {note}"},
	"deviated-value":   {"Deviated Value", "The value is deviated.", "There is a possible error because the value is deviated: {note}"},

	// header and labels
	"blank-header":    {"Blank Header", "This header is empty. A header should contain at least one value.", "Header is completely blank"},
	"extra-label":     {"Extra Label", "The header of the data source contains label that does not exist in the provided schema.", `There is an extra label "{label}" in header at position "{fieldNumber}"`},
	"missing-label":   {"Missing Label", "Based on the schema there should be a label that is missing in the data's header.", `There is a missing label in the header's field "{fieldName}" at position "{fieldNumber}"`},
	"blank-label":     {"Blank Label", "A label in the header row is missing a value. Label should be provided and not be blank.", `Label in the header in field at position "{fieldNumber}" is blank`},
	"duplicate-label": {"Duplicate Label", "Two columns in the header row have the same value. Column names should be unique.", `Label "{label}" in the header at position "{fieldNumber}" is duplicated to a label: {note}`},
	"incorrect-label": {"Incorrect Label", "One of the data source header does not match the field name defined in the schema.", `Label "{label}" in field {fieldName} at position "{fieldNumber}" does not match the field name in the schema`},

	// rows
	"blank-row":      {"Blank Row", "This row is empty. A row should contain at least one value.", `Row at position "{rowNumber}" is completely blank`},
	"primary-key":    {"Primary Key Error", "Values in the primary key fields should be unique for every row.", `Row at position "{rowNumber}" violates the primary key: {note}`},
	"foreign-key":    {"Foreign Key Error", "Values in the foreign key fields should exist in the reference table.", `Row at position "{rowNumber}" violates the foreign key: {note}`},
	"duplicate-row":  {"Duplicate Row", "The row is duplicated.", `Row at position {rowNumber} is duplicated: {note}`},
	"row-constraint": {"Row Constraint", "The value does not conform to the row constraint.", `The row at position {rowNumber} has an error: {note}`},

	// cells
	"extra-cell":       {"Extra Cell", "This row has more values compared to the header row (the first row in the data source)." + sameColumns, `Row at position "{rowNumber}" has an extra value in field at position "{fieldNumber}"`},
	"missing-cell":     {"Missing Cell", "This row has less values compared to the header row (the first row in the data source)." + sameColumns, `Row at position "{rowNumber}" has a missing cell in field "{fieldName}" at position "{fieldNumber}"`},
	"type-error":       {"Type Error", "The value does not match the schema type and format for this field.", `Type error in the cell "{cell}" in row "{rowNumber}" and field "{fieldName}" at position "{fieldNumber}": {note}`},
	"constraint-error": {"Constraint Error", "A field value does not conform to a constraint.", `The cell "{cell}" in row at position "{rowNumber}" and field "{fieldName}" at position "{fieldNumber}" does not conform to a constraint: {note}`},
	"unique-error":     {"Unique Error", "This field is a unique field but it contains a value that has been used in another row.", `Row at position "{rowNumber}" has unique constraint violation in field "{fieldName}" at position "{fieldNumber}": {note}`},
	"truncated-value":  {"Truncated Value", "The value is possible truncated.", `The cell {cell} in row at position {rowNumber} and field {fieldName} at position {fieldNumber} has an error: {note}`},
	"forbidden-value":  {"Forbidden Value", "The value is forbidden.", `The cell {cell} in row at position {rowNumber} and field {fieldName} at position {fieldNumber} has an error: {note}`},
	"sequential-value": {"Sequential Value", "The value is not sequential.", `The cell {cell} in row at position {rowNumber} and field {fieldName} at position {fieldNumber} has an error: {note}`},
	"ascii-value":      {"Ascii Value", "The cell contains non-ascii characters.", `The cell {cell} in row at position {rowNumber} and field {fieldName} at position {fieldNumber} has an error: {note}`},
	"deviated-cell":    {"Deviated Cell", "The cell is deviated.", `There is a possible error because the cell is deviated: {note}`},
}

var ja = map[string]entry{
	"general-error":    {title: "一般エラー"},
	"task-error":       {title: "タスクエラー", template: "タスクにエラーがあります: {note}"},
	"check-error":      {title: "チェックエラー", template: "チェックにエラーがあります: {note}"},
	"source-error":     {title: "ソースエラー"},
	"encoding-error":   {title: "エンコーディングエラー"},
	"schema-error":     {title: "スキーマエラー", template: "スキーマが不正です: {note}"},
	"field-error":      {title: "フィールドエラー", template: "フィールドが不正です: {note}"},
	"detector-error":   {title: "検出器エラー"},
	"hash-count":       {title: "ハッシュ不一致"},
	"byte-count":       {title: "バイト数不一致"},
	"field-count":      {title: "フィールド数不一致"},
	"row-count":        {title: "行数不一致"},
	"table-dimensions": {title: "表の次元エラー"},
	"deviated-value":   {title: "外れ値"},
	"blank-header":     {title: "空のヘッダー", template: "ヘッダーが空です"},
	"extra-label":      {title: "余分なラベル"},
	"missing-label":    {title: "ラベル不足"},
	"blank-label":      {title: "空のラベル"},
	"duplicate-label":  {title: "ラベルの重複"},
	"incorrect-label":  {title: "ラベル不一致"},
	"blank-row":        {title: "空行", template: `{rowNumber} 行目が空です`},
	"primary-key":      {title: "主キーエラー", template: `{rowNumber} 行目が主キーに違反しています: {note}`},
	"foreign-key":      {title: "外部キーエラー", template: `{rowNumber} 行目が外部キーに違反しています: {note}`},
	"duplicate-row":    {title: "行の重複"},
	"row-constraint":   {title: "行制約エラー"},
	"extra-cell":       {title: "余分なセル", template: `{rowNumber} 行目の {fieldNumber} 列目に余分な値があります`},
	"missing-cell":     {title: "セル不足", template: `{rowNumber} 行目のフィールド "{fieldName}" ({fieldNumber} 列目) のセルがありません`},
	"type-error":       {title: "型エラー", template: `{rowNumber} 行目のフィールド "{fieldName}" ({fieldNumber} 列目) のセル "{cell}" の型が不正です: {note}`},
	"constraint-error": {title: "制約エラー", template: `{rowNumber} 行目のフィールド "{fieldName}" ({fieldNumber} 列目) のセル "{cell}" が制約に違反しています: {note}`},
	"unique-error":     {title: "一意性エラー"},
	"truncated-value":  {title: "切り詰められた値"},
	"forbidden-value":  {title: "禁止された値"},
	"sequential-value": {title: "連番エラー"},
	"ascii-value":      {title: "非ASCII値"},
	"deviated-cell":    {title: "外れたセル"},
}
