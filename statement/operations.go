/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package statement

import "github.com/tomoncle/crudal/model"

// Find builds a select of target filtered by filters. WithRows maps to the
// row limit.
func Find(meta *model.Meta, target Target, filters Filters, opts ...Paging) (*SelectStatement, error) {
	return BuildSelect(meta, target, filters, opts...)
}

// Delete builds a bulk delete of the rows matching filters.
func Delete(meta *model.Meta, filters Filters) (*DeleteStatement, error) {
	return BuildDelete(meta, filters)
}

// Update builds a bulk update setting values on the rows matching filters.
func Update(meta *model.Meta, values Values, filters Filters) (*UpdateStatement, error) {
	return BuildUpdate(meta, filters, values)
}
